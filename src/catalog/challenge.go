package catalog

// Challenge is an ephemeral proof-of-work puzzle. The prefix is random; the
// target is a 256-bit unsigned integer rendered as 64 uppercase hex digits.
// A submission "<prefix>:<nonce>" solves the challenge when
// SHA-256(prefix || nonce), read big-endian, is less than or equal to the
// target. Challenges live only in the challenge cache and are consumed on
// first successful verification.
type Challenge struct {
	Prefix string `json:"prefix"`
	Target string `json:"target"`
}
