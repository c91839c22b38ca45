package v1

import (
	"fmt"
	"io"
	"net/http"

	"github.com/buildsite/backend/internal/blob"
	"github.com/buildsite/backend/internal/httputil"
	"github.com/buildsite/backend/internal/ledger"
	"github.com/buildsite/backend/internal/models"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/ryanuber/go-glob"
	"golang.org/x/exp/slices"
)

// ReceiptStore is the blob store receipts are written to. It is set by the
// router during startup.
var ReceiptStore blob.Store

// RegisterExpenseRoutes registers the routes for expenses with
// the RouterGroup that is passed.
func RegisterExpenseRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsExpenseList)
		r.GET("", GetExpenses)
		r.POST("", CreateExpenses)
	}

	// Expense with ID
	{
		r.OPTIONS("/:id", OptionsExpenseDetail)
		r.GET("/:id", GetExpense)
		r.PATCH("/:id", UpdateExpense)
		r.DELETE("/:id", DeleteExpense)
	}

	// Approval state machine
	{
		r.OPTIONS("/:id/approve", OptionsExpenseDecision)
		r.POST("/:id/approve", ApproveExpense)
		r.OPTIONS("/:id/reject", OptionsExpenseDecision)
		r.POST("/:id/reject", RejectExpense)
	}

	// Receipts
	{
		r.OPTIONS("/:id/receipt", OptionsExpenseReceipt)
		r.GET("/:id/receipt", GetExpenseReceipt)
		r.POST("/:id/receipt", UploadExpenseReceipt)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Expenses
// @Success		204
// @Router			/v1/expenses [options]
func OptionsExpenseList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Expenses
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/expenses/{id} [options]
func OptionsExpenseDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.Expense{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Expenses
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/expenses/{id}/approve [options]
func OptionsExpenseDecision(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.Expense{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Expenses
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/expenses/{id}/receipt [options]
func OptionsExpenseReceipt(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.Expense{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPost(c)
}

// @Summary		Create expenses
// @Description	Creates new expenses. Expenses are always created in pending state.
// @Tags			Expenses
// @Produce		json
// @Success		201			{object}	ExpenseCreateResponse
// @Failure		400			{object}	ExpenseCreateResponse
// @Failure		404			{object}	ExpenseCreateResponse
// @Failure		500			{object}	ExpenseCreateResponse
// @Param			expenses	body		[]ExpenseEditable	true	"Expenses"
// @Router			/v1/expenses [post]
func CreateExpenses(c *gin.Context) {
	var editables []ExpenseEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ExpenseCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := ExpenseCreateResponse{}

	for _, editable := range editables {
		expense := editable.model()

		err = models.DB.Create(&expense).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newExpense(c.GetString(string(models.DBContextURL)), expense)
		r.Data = append(r.Data, ExpenseResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get expenses
// @Description	Returns a list of expenses
// @Tags			Expenses
// @Produce		json
// @Success		200	{object}	ExpenseListResponse
// @Failure		400	{object}	ExpenseListResponse
// @Failure		500	{object}	ExpenseListResponse
// @Router			/v1/expenses [get]
// @Param			project		query	string	false	"Filter by project ID"
// @Param			category	query	string	false	"Filter by category, exact match"
// @Param			status		query	string	false	"Filter by approval state"
// @Param			vendor		query	string	false	"Filter by vendor, glob patterns like Acme* are supported"
// @Param			offset		query	uint	false	"The offset of the first Expense returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of Expenses to return. Defaults to 50."
func GetExpenses(c *gin.Context) {
	var filter ExpenseQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	filterModel, err := filter.model()
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ExpenseListResponse{
			Error: &s,
		})
		return
	}

	q := models.DB.
		Order("date DESC").
		Where(&filterModel, queryFields...)

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}

	var expenses []models.Expense
	var count int64

	if filter.Vendor != "" {
		// The vendor filter supports globs, which sqlite LIKE cannot express
		// case-sensitively. The full result set is matched in memory and
		// paginated afterwards so that Count and Total describe the same set.
		var all []models.Expense
		err = q.Find(&all).Error
		if err != nil {
			s := err.Error()
			c.JSON(status(err), ExpenseListResponse{
				Error: &s,
			})
			return
		}

		matched := make([]models.Expense, 0, len(all))
		for _, expense := range all {
			if glob.Glob(filter.Vendor, expense.Vendor) {
				matched = append(matched, expense)
			}
		}

		count = int64(len(matched))

		offset := int(filter.Offset)
		if offset > len(matched) {
			offset = len(matched)
		}
		expenses = matched[offset:]
		if limit >= 0 && limit < len(expenses) {
			expenses = expenses[:limit]
		}
	} else {
		q = q.Offset(int(filter.Offset)).Limit(limit)

		err = q.Find(&expenses).Error
		if err != nil {
			s := err.Error()
			c.JSON(status(err), ExpenseListResponse{
				Error: &s,
			})
			return
		}

		err = q.Limit(-1).Offset(-1).Count(&count).Error
		if err != nil {
			e := err.Error()
			c.JSON(status(err), ExpenseListResponse{
				Error: &e,
			})
			return
		}
	}

	url := c.GetString(string(models.DBContextURL))

	data := make([]Expense, 0)
	for _, expense := range expenses {
		data = append(data, newExpense(url, expense))
	}

	c.JSON(http.StatusOK, ExpenseListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get expense
// @Description	Returns a specific expense
// @Tags			Expenses
// @Produce		json
// @Success		200	{object}	ExpenseResponse
// @Failure		400	{object}	ExpenseResponse
// @Failure		404	{object}	ExpenseResponse
// @Failure		500	{object}	ExpenseResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/expenses/{id} [get]
func GetExpense(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ExpenseResponse{
			Error: &s,
		})
		return
	}

	var expense models.Expense
	err = models.DB.First(&expense, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ExpenseResponse{
			Error: &s,
		})
		return
	}

	data := newExpense(c.GetString(string(models.DBContextURL)), expense)
	c.JSON(http.StatusOK, ExpenseResponse{Data: &data})
}

// @Summary		Update expense
// @Description	Update an existing expense. Only values to be updated need to be specified.
// @Tags			Expenses
// @Accept			json
// @Produce		json
// @Success		200		{object}	ExpenseResponse
// @Failure		400		{object}	ExpenseResponse
// @Failure		404		{object}	ExpenseResponse
// @Failure		500		{object}	ExpenseResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			expense	body		ExpenseEditable	true	"Expense"
// @Router			/v1/expenses/{id} [patch]
func UpdateExpense(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ExpenseResponse{
			Error: &s,
		})
		return
	}

	var expense models.Expense
	err = models.DB.First(&expense, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ExpenseResponse{
			Error: &s,
		})
		return
	}

	// Decided expenses are immutable, the state machine is the only way
	// to change them
	if expense.Status != models.ExpensePending {
		s := models.ErrExpenseNotPending.Error()
		c.JSON(http.StatusBadRequest, ExpenseResponse{
			Error: &s,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, ExpenseEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ExpenseResponse{
			Error: &s,
		})
		return
	}

	var data ExpenseEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ExpenseResponse{
			Error: &s,
		})
		return
	}

	err = models.DB.Model(&expense).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ExpenseResponse{
			Error: &s,
		})
		return
	}

	r := newExpense(c.GetString(string(models.DBContextURL)), expense)
	c.JSON(http.StatusOK, ExpenseResponse{Data: &r})
}

// @Summary		Delete expense
// @Description	Deletes an expense
// @Tags			Expenses
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/expenses/{id} [delete]
func DeleteExpense(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var expense models.Expense
	err = models.DB.First(&expense, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&expense).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Approve expense
// @Description	Approves a pending expense. The caller is identified by the X-User-ID header and needs the owner or admin role in the project.
// @Tags			Expenses
// @Produce		json
// @Success		200			{object}	ExpenseResponse
// @Failure		400			{object}	ExpenseResponse
// @Failure		403			{object}	ExpenseResponse
// @Failure		404			{object}	ExpenseResponse
// @Failure		500			{object}	ExpenseResponse
// @Param			id			path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			X-User-ID	header		string	true	"ID of the calling user"
// @Router			/v1/expenses/{id}/approve [post]
func ApproveExpense(c *gin.Context) {
	decideExpense(c, models.ExpenseApproved)
}

// @Summary		Reject expense
// @Description	Rejects a pending expense. The caller is identified by the X-User-ID header and needs the owner or admin role in the project.
// @Tags			Expenses
// @Produce		json
// @Success		200			{object}	ExpenseResponse
// @Failure		400			{object}	ExpenseResponse
// @Failure		403			{object}	ExpenseResponse
// @Failure		404			{object}	ExpenseResponse
// @Failure		500			{object}	ExpenseResponse
// @Param			id			path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			X-User-ID	header		string	true	"ID of the calling user"
// @Router			/v1/expenses/{id}/reject [post]
func RejectExpense(c *gin.Context) {
	decideExpense(c, models.ExpenseRejected)
}

func decideExpense(c *gin.Context, target models.ExpenseStatus) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ExpenseResponse{
			Error: &s,
		})
		return
	}

	userID, err := httputil.UUIDFromString(c.GetHeader("X-User-ID"))
	if err != nil || userID == uuid.Nil {
		s := errUserIDRequired.Error()
		c.JSON(http.StatusBadRequest, ExpenseResponse{
			Error: &s,
		})
		return
	}

	var expense models.Expense
	err = models.DB.First(&expense, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ExpenseResponse{
			Error: &s,
		})
		return
	}

	permissions, err := models.ResolvePermissions(models.DB, expense.ProjectID, userID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ExpenseResponse{
			Error: &s,
		})
		return
	}

	err = expense.Transition(models.DB, target, permissions)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ExpenseResponse{
			Error: &s,
		})
		return
	}

	data := newExpense(c.GetString(string(models.DBContextURL)), expense)
	c.JSON(http.StatusOK, ExpenseResponse{Data: &data})
}

// @Summary		Upload receipt
// @Description	Uploads a receipt file for the expense. When storing the file fails, the expense is kept and can be retried.
// @Tags			Expenses
// @Accept			multipart/form-data
// @Produce		json
// @Success		200		{object}	ExpenseResponse
// @Failure		400		{object}	ExpenseResponse
// @Failure		404		{object}	ExpenseResponse
// @Failure		500		{object}	ExpenseResponse
// @Param			id		path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			receipt	formData	file	true	"Receipt file"
// @Router			/v1/expenses/{id}/receipt [post]
func UploadExpenseReceipt(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ExpenseResponse{
			Error: &s,
		})
		return
	}

	var expense models.Expense
	err = models.DB.First(&expense, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ExpenseResponse{
			Error: &s,
		})
		return
	}

	header, err := c.FormFile("receipt")
	if err != nil {
		s := errNoFilePost.Error()
		c.JSON(http.StatusBadRequest, ExpenseResponse{
			Error: &s,
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, ExpenseResponse{
			Error: &s,
		})
		return
	}
	defer file.Close()

	// The expense row already exists. When the blob store fails, the
	// expense stays untouched and the upload can be retried.
	ref, err := ReceiptStore.Save(header.Filename, file)
	if err != nil {
		log.Error().Str("request-id", requestid.Get(c)).Msgf("receipt upload failed: %v", err)
		s := fmt.Sprintf("the expense of %s was kept, but the receipt could not be stored: %s", ledger.FormatAmount(expense.Amount), err)
		c.JSON(http.StatusInternalServerError, ExpenseResponse{
			Error: &s,
		})
		return
	}

	err = expense.AttachReceipt(models.DB, ref)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ExpenseResponse{
			Error: &s,
		})
		return
	}

	data := newExpense(c.GetString(string(models.DBContextURL)), expense)
	c.JSON(http.StatusOK, ExpenseResponse{Data: &data})
}

// @Summary		Download receipt
// @Description	Returns the receipt file of the expense
// @Tags			Expenses
// @Produce		octet-stream
// @Success		200
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/expenses/{id}/receipt [get]
func GetExpenseReceipt(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var expense models.Expense
	err = models.DB.First(&expense, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	if expense.ReceiptRef == "" {
		c.JSON(http.StatusNotFound, httpError{
			Error: "there is no receipt for this expense",
		})
		return
	}

	file, err := ReceiptStore.Open(expense.ReceiptRef)
	if err != nil {
		c.JSON(http.StatusNotFound, httpError{
			Error: "the receipt file could not be found",
		})
		return
	}
	defer file.Close()

	c.Status(http.StatusOK)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", expense.ReceiptRef))
	_, _ = io.Copy(c.Writer, file)
}
