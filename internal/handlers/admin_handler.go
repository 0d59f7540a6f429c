package handlers

import (
	"net/http"

	"rapidmandados_backend/internal/services"
	"rapidmandados_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	*BaseHandler
	adminService services.AdminService
}

func NewAdminHandler(base *BaseHandler, adminService services.AdminService) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  base,
		adminService: adminService,
	}
}

func (h *AdminHandler) Stats(c *gin.Context) {
	db := h.GetDB(c)

	stats, err := h.adminService.Stats(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) Users(c *gin.Context) {
	db := h.GetDB(c)

	users, err := h.adminService.Users(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) ToggleUserStatus(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	userID := c.Param("user_id")
	db := h.GetDB(c)

	resp, err := h.adminService.ToggleUserStatus(db, adminID, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) PendingDrivers(c *gin.Context) {
	db := h.GetDB(c)

	drivers, err := h.adminService.PendingDrivers(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, drivers)
}

func (h *AdminHandler) ApproveDriver(c *gin.Context) {
	var req dto.ApproveDriverRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	driverID := c.Param("driver_id")
	db := h.GetDB(c)

	if err := h.adminService.ApproveDriver(db, driverID, req.Approved, req.Comments); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	message := "Driver approved successfully"
	if !req.Approved {
		message = "Driver rejected successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *AdminHandler) DriversVerification(c *gin.Context) {
	db := h.GetDB(c)

	overview, err := h.adminService.DriversVerification(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

func (h *AdminHandler) PendingDocuments(c *gin.Context) {
	db := h.GetDB(c)

	docs, err := h.adminService.PendingDocuments(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, docs)
}

func (h *AdminHandler) ReviewDocument(c *gin.Context) {
	var req dto.ReviewDocumentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	docID := c.Param("document_id")
	db := h.GetDB(c)

	if err := h.adminService.ReviewDocument(db, docID, req.Status, req.Comments); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document reviewed successfully"})
}

func (h *AdminHandler) Payouts(c *gin.Context) {
	db := h.GetDB(c)

	payouts, err := h.adminService.Payouts(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, payouts)
}

func (h *AdminHandler) Collections(c *gin.Context) {
	db := h.GetDB(c)

	collections, err := h.adminService.Collections(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, collections)
}

func (h *AdminHandler) ProcessPayout(c *gin.Context) {
	payoutID := c.Param("payout_id")
	db := h.GetDB(c)

	if err := h.adminService.ProcessPayout(db, payoutID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Driver payout processed successfully"})
}

func (h *AdminHandler) MarkCommissionPaid(c *gin.Context) {
	collectionID := c.Param("collection_id")
	db := h.GetDB(c)

	if err := h.adminService.MarkCommissionPaid(db, collectionID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Commission marked as paid successfully"})
}

func (h *AdminHandler) CommissionConfig(c *gin.Context) {
	db := h.GetDB(c)

	cfg, err := h.adminService.CommissionConfig(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

func (h *AdminHandler) UpdateCommissionConfig(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CommissionConfigRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	cfg, err := h.adminService.UpdateCommissionConfig(db, adminID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}
