package handler

import (
	"errors"
	"net/http"
	"reflect"

	"smartpos/internal/apierror"
	"smartpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQuery binds and validates query-string filters.
func bindQuery(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	if err := validate.Struct(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos"))
		return false
	}
	return true
}

// writeServiceError maps service-layer errors onto HTTP statuses. Unknown
// errors are pushed through the gin error chain so the ErrorHandler
// middleware logs them and answers with a safe 500.
func writeServiceError(c *gin.Context, err error) {
	var (
		pagoExcede   *service.PagoExcedeSaldoError
		prodNoExiste *service.ProductoNoEncontradoError
		sinStock     *service.StockInsuficienteError
		sinCredito   *service.CreditoInsuficienteError
	)

	switch {
	case errors.Is(err, service.ErrDeudaNoEncontrada),
		errors.Is(err, service.ErrGastoNoEncontrado),
		errors.Is(err, service.ErrVentaNoEncontrada),
		errors.Is(err, service.ErrClienteNoEncontrado),
		errors.As(err, &prodNoExiste):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))

	case errors.Is(err, service.ErrStockConcurrente):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))

	case errors.Is(err, service.ErrCajaYaAbierta),
		errors.Is(err, service.ErrSinCajaAbierta),
		errors.Is(err, service.ErrMontoInvalido),
		errors.Is(err, service.ErrYaSaldada),
		errors.Is(err, service.ErrVentaSinItems),
		errors.Is(err, service.ErrCreditoSinCliente),
		errors.Is(err, service.ErrClienteConDeuda),
		errors.As(err, &pagoExcede),
		errors.As(err, &sinStock),
		errors.As(err, &sinCredito):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))

	default:
		_ = c.Error(err)
	}
}
