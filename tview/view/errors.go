package view

import "errors"

var ErrNotNumeric = errors.New("column is not numeric")
