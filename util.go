package pkspawn

import "errors"

var errEmptyArgv = errors.New("pkspawn: argv must have at least one element")
