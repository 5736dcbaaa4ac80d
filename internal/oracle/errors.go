package oracle

import "errors"

// ErrOracleUnavailable wraps any failure to obtain a judgement from the
// model: transport errors, timeouts, empty responses.
var ErrOracleUnavailable = errors.New("oracle: unavailable")

// Invalid is the literal the model returns when no option matches.
const Invalid = "INVALID"
