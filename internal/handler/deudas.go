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

type DeudasHandler struct{ svc service.CobroService }

func NewDeudasHandler(svc service.CobroService) *DeudasHandler { return &DeudasHandler{svc: svc} }

// Listar godoc
// @Summary Listar deudas de clientes
// @Tags    deudas
// @Produce json
// @Security BearerAuth
// @Param   cliente_id query string false "UUID del cliente"
// @Param   estado     query string false "pendiente | vencida | pagada | all"
// @Success 200 {object} dto.DeudaListResponse
// @Failure 400 {object} apierror.APIError
// @Router  /v1/deudas [get]
func (h *DeudasHandler) Listar(c *gin.Context) {
	var filter dto.DeudaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarDeudas(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary Obtiene una deuda con su historial de abonos
// @Tags    deudas
// @Produce json
// @Security BearerAuth
// @Param   id path string true "UUID de la deuda"
// @Success 200 {object} dto.DeudaResponse
// @Failure 404 {object} apierror.APIError
// @Router  /v1/deudas/{id} [get]
func (h *DeudasHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerDeuda(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Abonar godoc
// @Summary      Registrar un abono sobre una deuda
// @Description  Descuenta el saldo de la deuda, refleja el pago en el saldo deudor del cliente y en la venta de origen, y asienta el ingreso en la caja abierta.
// @Tags         deudas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "UUID de la deuda"
// @Param        body body dto.RegistrarPagoRequest true "Monto y metodo de pago"
// @Success      200  {object} dto.DeudaResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/deudas/{id}/abonos [post]
func (h *DeudasHandler) Abonar(c *gin.Context) {
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

	resp, err := h.svc.RegistrarAbono(c.Request.Context(), usuarioID, id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarcarVencidas runs the overdue sweep on demand. The mora cron runs the
// same sweep on a timer; this endpoint exists for back-office tooling.
func (h *DeudasHandler) MarcarVencidas(c *gin.Context) {
	afectadas, err := h.svc.MarcarVencidas(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ids := make([]string, 0, len(afectadas))
	for _, d := range afectadas {
		ids = append(ids, d.ID.String())
	}
	c.JSON(http.StatusOK, gin.H{"vencidas": len(ids), "ids": ids})
}
