package handler

import (
	"net/http"

	"smartpos/internal/apierror"
	"smartpos/internal/config"
	"smartpos/internal/dto"
	"smartpos/internal/infra"
	"smartpos/internal/middleware"
	"smartpos/internal/repository"
	"smartpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VentasHandler struct {
	svc  service.VentaService
	repo repository.VentaRepository
	cfg  *config.Config
}

func NewVentasHandler(svc service.VentaService, repo repository.VentaRepository, cfg *config.Config) *VentasHandler {
	return &VentasHandler{svc: svc, repo: repo, cfg: cfg}
}

// Registrar godoc
// @Summary      Registrar una nueva venta
// @Description  Crea una venta ACID: descuenta stock, genera la deuda si es a credito y asienta el cobro en la caja abierta.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarVentaRequest true "Detalle de la venta"
// @Success      201  {object} dto.VentaResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/ventas [post]
func (h *VentasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Registrar(c.Request.Context(), usuarioID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener godoc
// @Summary Obtiene una venta por ID
// @Tags    ventas
// @Produce json
// @Security BearerAuth
// @Param   id path string true "UUID de la venta"
// @Success 200 {object} dto.VentaResponse
// @Failure 404 {object} apierror.APIError
// @Router  /v1/ventas/{id} [get]
func (h *VentasHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary Listar ventas
// @Tags    ventas
// @Produce json
// @Security BearerAuth
// @Param   fecha       query string false "Fecha YYYY-MM-DD (default: hoy)"
// @Param   estado_pago query string false "pagada | credito | all"
// @Param   page        query int    false "Pagina (default 1)"
// @Param   limit       query int    false "Registros por pagina (default 50)"
// @Success 200 {object} dto.VentaListResponse
// @Failure 400 {object} apierror.APIError
// @Router  /v1/ventas [get]
func (h *VentasHandler) Listar(c *gin.Context) {
	var filter dto.VentaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ticket renders the sale receipt as a PDF and streams it back.
// The file is also left on disk so it can be re-printed or emailed later.
func (h *VentasHandler) Ticket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	venta, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Venta no encontrada"))
		return
	}
	path, err := infra.GenerateTicketPDF(venta, h.cfg.PDFStoragePath)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.FileAttachment(path, "ticket.pdf")
}
