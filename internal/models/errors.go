package models

import "fmt"

var (
	ErrMissingID         = fmt.Errorf("run record missing id")
	ErrMissingState      = fmt.Errorf("run record missing state")
	ErrMissingTimestamps = fmt.Errorf("run record missing timestamps")
)
