package bootstrap

import "github.com/kbukum/errkit/config"

// Config is satisfied by any struct embedding config.ServiceConfig.
type Config = config.Config
