package service

// InternalError marks an infrastructure failure (database, cache, bus)
// so transport code can map it to a 500 instead of a validation 400.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func internalErr(op string, err error) error {
	return &InternalError{Op: op, Err: err}
}
