package catchpanic

import (
	"fmt"
	"runtime"

	"fknsrs.biz/p/ytreport/internal/stackutil"
)

// PanicError carries a recovered panic value and where it happened.
type PanicError struct {
	Value any
	Stack []runtime.Frame
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return "panic: " + err.Error()
	}

	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}

func Catch(fn func()) (err error) {
	defer func() {
		if ex := recover(); ex != nil {
			err = fmt.Errorf("catchpanic.Catch: %w", &PanicError{
				Value: ex,
				Stack: stackutil.WithoutRuntime(stackutil.GetStack(32, 0)),
			})
		}
	}()

	fn()

	return
}

func CatchErr0(fn func() error) error {
	var err error

	if err1 := Catch(func() { err = fn() }); err1 != nil {
		return err1
	}

	return err
}

func CatchErr1[T any](fn func() (T, error)) (T, error) {
	var res T
	var err error

	if err1 := Catch(func() { res, err = fn() }); err1 != nil {
		err = err1
	}

	return res, err
}
