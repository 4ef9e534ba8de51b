package handlers

import (
	"net/http"

	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

type PaymentStatusRequest struct {
	Status models.PaymentStatus `json:"status" binding:"required,oneof=Paid Cancelled"`
}

// GetPayments handles GET /payments (Admin)
func (h *PaymentHandler) GetPayments(c *gin.Context) {
	listAll(c, paymentFields, func(c *gin.Context, aq *AdvancedQuery) (*services.ListResult[models.Payment], error) {
		return h.paymentService.List(c.Request.Context(), aq.Query)
	})
}

// GetTaskPayments handles GET /tasks/:id/payments (task owner or Admin)
func (h *PaymentHandler) GetTaskPayments(c *gin.Context) {
	r, err := requester(c)
	if err != nil {
		fail(c, err)
		return
	}
	taskID, err := parseID(c, "id", "task")
	if err != nil {
		fail(c, err)
		return
	}

	payments, err := h.paymentService.ListByTask(c.Request.Context(), r, taskID)
	if err != nil {
		fail(c, err)
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	respondList(c, payments, len(payments))
}

// GetPayment handles GET /payments/:id (payer, task owner or Admin)
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	r, err := requester(c)
	if err != nil {
		fail(c, err)
		return
	}
	id, err := parseID(c, "id", "payment")
	if err != nil {
		fail(c, err)
		return
	}

	payment, err := h.paymentService.Get(c.Request.Context(), r, id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, payment)
}

// CreatePayment handles POST /tasks/:id/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	r, err := requester(c)
	if err != nil {
		fail(c, err)
		return
	}
	taskID, err := parseID(c, "id", "task")
	if err != nil {
		fail(c, err)
		return
	}

	var in services.PaymentInput
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &in); err != nil {
			fail(c, err)
			return
		}
	}

	payment, err := h.paymentService.Create(c.Request.Context(), r, taskID, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, payment)
}

// UpdatePaymentStatus handles PUT /payments/:id/status (payer or Admin)
func (h *PaymentHandler) UpdatePaymentStatus(c *gin.Context) {
	r, err := requester(c)
	if err != nil {
		fail(c, err)
		return
	}
	id, err := parseID(c, "id", "payment")
	if err != nil {
		fail(c, err)
		return
	}

	var req PaymentStatusRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	payment, err := h.paymentService.UpdateStatus(c.Request.Context(), r, id, req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, payment)
}
