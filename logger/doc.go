// Package logger provides structured logging on top of zerolog.
//
// Loggers write JSON or console output to stdout, stderr, or a time-rotated
// file. Request-scoped values placed in the context with ContextWithRequestID
// and ContextWithUserID are attached by WithContext.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "file"
//	  file:
//	    dir: "./logs"
//	    max_age_days: 7
//
// # Usage
//
//	log := logger.WithComponent("render")
//	log.Error("request failed", logger.ErrorFields("create_article", err))
package logger
