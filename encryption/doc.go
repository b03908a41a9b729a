// Package encryption seals short secrets, such as a stored bearer token,
// with an AEAD cipher keyed from a passphrase.
//
//	enc, err := encryption.New(os.Getenv("APIPROBE_TOKEN_KEY"))
//	sealed, err := enc.Encrypt(token)
//	token, err = enc.Decrypt(sealed)
//
// Output is base64url of nonce followed by ciphertext. The algorithm name is
// bound as additional data, so a value sealed with one algorithm never opens
// with the other.
package encryption
