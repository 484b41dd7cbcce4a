package handler

import (
	"net/http"

	"smartpos/internal/apierror"
	"smartpos/internal/dto"
	"smartpos/internal/middleware"
	"smartpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GastosHandler struct{ svc service.CobroService }

func NewGastosHandler(svc service.CobroService) *GastosHandler { return &GastosHandler{svc: svc} }

// Crear godoc
// @Summary Registrar un gasto a proveedor
// @Tags    gastos
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   body body dto.CrearGastoRequest true "Datos del gasto"
// @Success 201 {object} dto.GastoResponse
// @Failure 400 {object} apierror.APIError
// @Router  /v1/gastos [post]
func (h *GastosHandler) Crear(c *gin.Context) {
	var req dto.CrearGastoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearGasto(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Listar gastos
// @Tags    gastos
// @Produce json
// @Security BearerAuth
// @Param   estado query string false "pendiente | pagada | all"
// @Success 200 {object} dto.GastoListResponse
// @Failure 400 {object} apierror.APIError
// @Router  /v1/gastos [get]
func (h *GastosHandler) Listar(c *gin.Context) {
	var filter dto.GastoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarGastos(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary Obtiene un gasto con su historial de pagos
// @Tags    gastos
// @Produce json
// @Security BearerAuth
// @Param   id path string true "UUID del gasto"
// @Success 200 {object} dto.GastoResponse
// @Failure 404 {object} apierror.APIError
// @Router  /v1/gastos/{id} [get]
func (h *GastosHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerGasto(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Pagar godoc
// @Summary      Registrar un pago parcial o total de un gasto
// @Description  Descuenta el saldo pendiente del gasto y asienta el egreso en la caja abierta.
// @Tags         gastos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "UUID del gasto"
// @Param        body body dto.RegistrarPagoRequest true "Monto y metodo de pago"
// @Success      200  {object} dto.GastoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/gastos/{id}/pagos [post]
func (h *GastosHandler) Pagar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.RegistrarPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.RegistrarPagoGasto(c.Request.Context(), usuarioID, id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
