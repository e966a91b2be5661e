package catchpanic

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatchError(t *testing.T) {
	a := assert.New(t)

	err := Catch(func() { panic(fmt.Errorf("test_error")) })
	a.Error(err)
	a.ErrorContains(err, "test_error")
}

func panicsDeep() { panic("deep") }

func TestCatchPanicError(t *testing.T) {
	a := assert.New(t)

	errValue := fmt.Errorf("test_error")

	err := Catch(func() { panic(errValue) })
	a.ErrorIs(err, errValue)

	err = Catch(panicsDeep)

	var panicErr *PanicError
	if a.True(errors.As(err, &panicErr)) {
		a.Equal("deep", panicErr.Value)
		a.Nil(panicErr.Unwrap())
		a.Equal("panic: deep", panicErr.Error())

		found := false
		for _, f := range panicErr.Stack {
			a.False(strings.HasPrefix(f.Function, "runtime."), f.Function)
			if strings.HasSuffix(f.Function, "catchpanic.panicsDeep") {
				found = true
			}
		}
		a.True(found)
	}

	a.NoError(Catch(func() {}))
}

func TestCatchString(t *testing.T) {
	a := assert.New(t)

	err := Catch(func() { panic("test_error") })
	a.Error(err)
	a.ErrorContains(err, "test_error")
}

func TestCatchErr0(t *testing.T) {
	a := assert.New(t)

	{
		err := CatchErr0(func() error { return fmt.Errorf("test_error") })
		a.Error(err)
		a.ErrorContains(err, "test_error")
	}

	{
		err := CatchErr0(func() error { panic(fmt.Errorf("test_error")) })
		a.Error(err)
		a.ErrorContains(err, "test_error")
	}

	{
		err := CatchErr0(func() error { panic("test_error") })
		a.Error(err)
		a.ErrorContains(err, "test_error")
	}
}

func TestCatchErr1(t *testing.T) {
	a := assert.New(t)

	{
		v, err := CatchErr1(func() (string, error) { return "test_result", nil })
		a.Equal(v, "test_result")
		a.NoError(err)
	}

	{
		v, err := CatchErr1(func() (string, error) { return "test_result", fmt.Errorf("test_error") })
		a.Equal(v, "test_result")
		a.Error(err)
		a.ErrorContains(err, "test_error")
	}

	{
		v, err := CatchErr1(func() (string, error) { return "", fmt.Errorf("test_error") })
		a.Equal(v, "")
		a.Error(err)
		a.ErrorContains(err, "test_error")
	}

	{
		v, err := CatchErr1(func() (string, error) { panic(fmt.Errorf("test_error")) })
		a.Equal(v, "")
		a.Error(err)
		a.ErrorContains(err, "test_error")
	}

	{
		v, err := CatchErr1(func() (string, error) { panic("test_error") })
		a.Equal(v, "")
		a.Error(err)
		a.ErrorContains(err, "test_error")
	}
}
