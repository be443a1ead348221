package middleware

import (
	"fmt"
	"net/http"
	"reflect"
	"runtime"

	"github.com/labstack/echo/v4"
)

var (
	ctxInterface   = reflect.TypeOf((*echo.Context)(nil)).Elem()
	errorInterface = reflect.TypeOf((*error)(nil)).Elem()
)

// WrapHandler turns func(echo.Context, Req) (Res, error) or
// func(echo.Context, Req) error into an echo handler. Req is bound from path,
// query, body and headers, then validated. Results are wrapped in Response;
// handlers returning only an error answer 204.
func WrapHandler(f any) echo.HandlerFunc {
	handler, err := wrapHandler(f)
	if err != nil {
		panic(err)
	}

	return handler
}

func wrapHandler(f any) (echo.HandlerFunc, error) {
	fTyp := reflect.TypeOf(f)
	fVal := reflect.ValueOf(f)

	if fVal.Kind() != reflect.Func {
		return nil, fmt.Errorf("invalid function passed to wrap handler: %v", fVal)
	}
	fName := runtime.FuncForPC(fVal.Pointer()).Name()

	if numIn := fTyp.NumIn(); numIn != 2 {
		return nil, fmt.Errorf("[%s] invalid function arguments length: %d", fName, numIn)
	}
	if !fTyp.In(0).Implements(ctxInterface) {
		return nil, fmt.Errorf("[%s] first argument must have type echo.Context", fName)
	}
	if kind := fTyp.In(1).Kind(); kind != reflect.Struct {
		return nil, fmt.Errorf("[%s] second argument must be a struct: %v", fName, kind)
	}

	numOut := fTyp.NumOut()
	if numOut < 1 || numOut > 2 {
		return nil, fmt.Errorf("[%s] invalid function returns length: %d", fName, numOut)
	}
	errorIndex := numOut - 1
	if last := fTyp.Out(errorIndex); !last.Implements(errorInterface) {
		return nil, fmt.Errorf("[%s] last return argument must have type error: %v", fName, last)
	}

	reqType := fTyp.In(1)

	return func(c echo.Context) error {
		req := reflect.New(reqType)
		if err := BindAndValidate(c, req.Interface()); err != nil {
			return err
		}

		res := fVal.Call([]reflect.Value{reflect.ValueOf(c), req.Elem()})
		if errVal := res[errorIndex]; !errVal.IsNil() {
			err, ok := errVal.Interface().(error)
			if !ok {
				return fmt.Errorf("could not cast error result: %+v", errVal.Interface())
			}
			return err
		}

		if c.Response().Committed {
			return nil
		}
		if numOut == 1 {
			return c.NoContent(http.StatusNoContent)
		}

		data := res[0].Interface()
		if v, ok := data.(*Response); ok && v != nil {
			return c.JSON(v.Status, v)
		}
		return c.JSON(http.StatusOK, &Response{
			Status:  http.StatusOK,
			Success: true,
			Data:    data,
		})
	}, nil
}
