package v1

import (
	"net/http"
	"time"

	"github.com/buildsite/backend/internal/httputil"
	"github.com/buildsite/backend/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

// RegisterInvoiceRoutes registers the routes for invoices with
// the RouterGroup that is passed.
func RegisterInvoiceRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsInvoiceList)
		r.GET("", GetInvoices)
		r.POST("", CreateInvoices)
	}

	// Invoice with ID
	{
		r.OPTIONS("/:id", OptionsInvoiceDetail)
		r.GET("/:id", GetInvoice)
		r.DELETE("/:id", DeleteInvoice)
	}

	// Lifecycle
	{
		r.OPTIONS("/:id/send", OptionsInvoiceTransition)
		r.POST("/:id/send", SendInvoice)
		r.OPTIONS("/:id/pay", OptionsInvoiceTransition)
		r.POST("/:id/pay", PayInvoice)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Invoices
// @Success		204
// @Router			/v1/invoices [options]
func OptionsInvoiceList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Invoices
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/invoices/{id} [options]
func OptionsInvoiceDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.Invoice{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetDelete(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Invoices
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/invoices/{id}/send [options]
func OptionsInvoiceTransition(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.Invoice{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsPost(c)
}

// @Summary		Create invoices
// @Description	Creates new draft invoices. Tax and total are computed, the invoice number is generated from the project name.
// @Tags			Invoices
// @Produce		json
// @Success		201			{object}	InvoiceCreateResponse
// @Failure		400			{object}	InvoiceCreateResponse
// @Failure		404			{object}	InvoiceCreateResponse
// @Failure		500			{object}	InvoiceCreateResponse
// @Param			invoices	body		[]InvoiceEditable	true	"Invoices"
// @Router			/v1/invoices [post]
func CreateInvoices(c *gin.Context) {
	var editables []InvoiceEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := InvoiceCreateResponse{}

	for _, editable := range editables {
		invoice := editable.model()

		err = models.DB.Create(&invoice).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newInvoice(c.GetString(string(models.DBContextURL)), invoice)
		r.Data = append(r.Data, InvoiceResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get invoices
// @Description	Returns a list of invoices
// @Tags			Invoices
// @Produce		json
// @Success		200	{object}	InvoiceListResponse
// @Failure		400	{object}	InvoiceListResponse
// @Failure		500	{object}	InvoiceListResponse
// @Router			/v1/invoices [get]
// @Param			project	query	string	false	"Filter by project ID"
// @Param			status	query	string	false	"Filter by lifecycle state"
// @Param			offset	query	uint	false	"The offset of the first Invoice returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of Invoices to return. Defaults to 50."
func GetInvoices(c *gin.Context) {
	var filter InvoiceQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	filterModel, err := filter.model()
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceListResponse{
			Error: &s,
		})
		return
	}

	q := models.DB.
		Order("created_at DESC").
		Where(&filterModel, queryFields...)

	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var invoices []models.Invoice
	err = q.Find(&invoices).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), InvoiceListResponse{
			Error: &e,
		})
		return
	}

	url := c.GetString(string(models.DBContextURL))

	data := make([]Invoice, 0)
	for _, invoice := range invoices {
		data = append(data, newInvoice(url, invoice))
	}

	c.JSON(http.StatusOK, InvoiceListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get invoice
// @Description	Returns a specific invoice
// @Tags			Invoices
// @Produce		json
// @Success		200	{object}	InvoiceResponse
// @Failure		400	{object}	InvoiceResponse
// @Failure		404	{object}	InvoiceResponse
// @Failure		500	{object}	InvoiceResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/invoices/{id} [get]
func GetInvoice(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &s,
		})
		return
	}

	var invoice models.Invoice
	err = models.DB.First(&invoice, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &s,
		})
		return
	}

	data := newInvoice(c.GetString(string(models.DBContextURL)), invoice)
	c.JSON(http.StatusOK, InvoiceResponse{Data: &data})
}

// @Summary		Delete invoice
// @Description	Deletes an invoice. Invoices can be deleted in any state.
// @Tags			Invoices
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/invoices/{id} [delete]
func DeleteInvoice(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var invoice models.Invoice
	err = models.DB.First(&invoice, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&invoice).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Send invoice
// @Description	Marks the invoice as sent. Sending an already sent invoice is a no-op, sending a paid invoice is an error.
// @Tags			Invoices
// @Produce		json
// @Success		200	{object}	InvoiceResponse
// @Failure		400	{object}	InvoiceResponse
// @Failure		404	{object}	InvoiceResponse
// @Failure		500	{object}	InvoiceResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/invoices/{id}/send [post]
func SendInvoice(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &s,
		})
		return
	}

	var invoice models.Invoice
	err = models.DB.First(&invoice, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &s,
		})
		return
	}

	err = invoice.MarkSent(models.DB)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &s,
		})
		return
	}

	data := newInvoice(c.GetString(string(models.DBContextURL)), invoice)
	c.JSON(http.StatusOK, InvoiceResponse{Data: &data})
}

// PayRequest is the optional body for the pay endpoint.
type PayRequest struct {
	PaidDate *time.Time `json:"paidDate" example:"2024-06-02T00:00:00Z"` // Payment date, defaults to now
}

// @Summary		Pay invoice
// @Description	Marks the invoice as paid. A draft invoice can be paid directly. Paying an already paid invoice keeps the original payment date.
// @Tags			Invoices
// @Accept			json
// @Produce		json
// @Success		200		{object}	InvoiceResponse
// @Failure		400		{object}	InvoiceResponse
// @Failure		404		{object}	InvoiceResponse
// @Failure		500		{object}	InvoiceResponse
// @Param			id		path		URIID		true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			payment	body		PayRequest	false	"Payment"
// @Router			/v1/invoices/{id}/pay [post]
func PayInvoice(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &s,
		})
		return
	}

	var invoice models.Invoice
	err = models.DB.First(&invoice, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &s,
		})
		return
	}

	// The body is optional, an empty one means "paid now"
	var payment PayRequest
	if c.Request.ContentLength > 0 {
		err = httputil.BindData(c, &payment)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), InvoiceResponse{
				Error: &s,
			})
			return
		}
	}

	paidDate := time.Time{}
	if payment.PaidDate != nil {
		paidDate = *payment.PaidDate
	}

	err = invoice.MarkPaid(models.DB, paidDate)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &s,
		})
		return
	}

	data := newInvoice(c.GetString(string(models.DBContextURL)), invoice)
	c.JSON(http.StatusOK, InvoiceResponse{Data: &data})
}
