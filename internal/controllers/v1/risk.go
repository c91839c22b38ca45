package v1

import (
	"net/http"

	"github.com/buildsite/backend/internal/analysis"
	"github.com/buildsite/backend/internal/httputil"
	"github.com/buildsite/backend/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

// Analysis is the client for the external risk analysis service. It is set
// by the router during startup.
var Analysis *analysis.Client

// RegisterRiskSampleRoutes registers the routes for risk samples with
// the RouterGroup that is passed.
func RegisterRiskSampleRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsRiskSampleList)
		r.GET("", GetRiskSamples)
		r.POST("", CreateRiskSamples)
	}

	// RiskSample with ID
	{
		r.OPTIONS("/:id", OptionsRiskSampleDetail)
		r.GET("/:id", GetRiskSample)
		r.PATCH("/:id", UpdateRiskSample)
		r.DELETE("/:id", DeleteRiskSample)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			RiskSamples
// @Success		204
// @Router			/v1/risk-samples [options]
func OptionsRiskSampleList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			RiskSamples
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/risk-samples/{id} [options]
func OptionsRiskSampleDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.RiskSample{}, uri.ID).Error
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
// @Tags			RiskSamples
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/projects/{id}/risk/analyze [options]
func OptionsRiskAnalyze(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.Project{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsPost(c)
}

// @Summary		Create risk samples
// @Description	Creates new risk samples. The severity is derived from the score.
// @Tags			RiskSamples
// @Produce		json
// @Success		201		{object}	RiskSampleCreateResponse
// @Failure		400		{object}	RiskSampleCreateResponse
// @Failure		404		{object}	RiskSampleCreateResponse
// @Failure		500		{object}	RiskSampleCreateResponse
// @Param			samples	body		[]RiskSampleEditable	true	"RiskSamples"
// @Router			/v1/risk-samples [post]
func CreateRiskSamples(c *gin.Context) {
	var editables []RiskSampleEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RiskSampleCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := RiskSampleCreateResponse{}

	for _, editable := range editables {
		sample := editable.model()

		err = models.DB.Create(&sample).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newRiskSample(c.GetString(string(models.DBContextURL)), sample)
		r.Data = append(r.Data, RiskSampleResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get risk samples
// @Description	Returns a list of risk samples
// @Tags			RiskSamples
// @Produce		json
// @Success		200	{object}	RiskSampleListResponse
// @Failure		400	{object}	RiskSampleListResponse
// @Failure		500	{object}	RiskSampleListResponse
// @Router			/v1/risk-samples [get]
// @Param			project		query	string	false	"Filter by project ID"
// @Param			riskType	query	string	false	"Filter by risk category"
// @Param			active		query	bool	false	"Filter by active state"
// @Param			offset		query	uint	false	"The offset of the first RiskSample returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of RiskSamples to return. Defaults to 50."
func GetRiskSamples(c *gin.Context) {
	var filter RiskSampleQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	filterModel, err := filter.model()
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RiskSampleListResponse{
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

	var samples []models.RiskSample
	err = q.Find(&samples).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RiskSampleListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RiskSampleListResponse{
			Error: &e,
		})
		return
	}

	url := c.GetString(string(models.DBContextURL))

	data := make([]RiskSample, 0)
	for _, sample := range samples {
		data = append(data, newRiskSample(url, sample))
	}

	c.JSON(http.StatusOK, RiskSampleListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get risk sample
// @Description	Returns a specific risk sample
// @Tags			RiskSamples
// @Produce		json
// @Success		200	{object}	RiskSampleResponse
// @Failure		400	{object}	RiskSampleResponse
// @Failure		404	{object}	RiskSampleResponse
// @Failure		500	{object}	RiskSampleResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/risk-samples/{id} [get]
func GetRiskSample(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RiskSampleResponse{
			Error: &s,
		})
		return
	}

	var sample models.RiskSample
	err = models.DB.First(&sample, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RiskSampleResponse{
			Error: &s,
		})
		return
	}

	data := newRiskSample(c.GetString(string(models.DBContextURL)), sample)
	c.JSON(http.StatusOK, RiskSampleResponse{Data: &data})
}

// @Summary		Dismiss risk sample
// @Description	Updates the active flag of a risk sample. Samples are immutable except for dismissal.
// @Tags			RiskSamples
// @Accept			json
// @Produce		json
// @Success		200		{object}	RiskSampleResponse
// @Failure		400		{object}	RiskSampleResponse
// @Failure		404		{object}	RiskSampleResponse
// @Failure		500		{object}	RiskSampleResponse
// @Param			id		path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			sample	body		RiskSampleUpdate	true	"RiskSample"
// @Router			/v1/risk-samples/{id} [patch]
func UpdateRiskSample(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RiskSampleResponse{
			Error: &s,
		})
		return
	}

	var sample models.RiskSample
	err = models.DB.First(&sample, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RiskSampleResponse{
			Error: &s,
		})
		return
	}

	var data RiskSampleUpdate
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RiskSampleResponse{
			Error: &s,
		})
		return
	}

	err = models.DB.Model(&sample).Updates(map[string]any{"active": data.Active}).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RiskSampleResponse{
			Error: &s,
		})
		return
	}

	sample.Active = data.Active
	r := newRiskSample(c.GetString(string(models.DBContextURL)), sample)
	c.JSON(http.StatusOK, RiskSampleResponse{Data: &r})
}

// @Summary		Delete risk sample
// @Description	Deletes a risk sample
// @Tags			RiskSamples
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/risk-samples/{id} [delete]
func DeleteRiskSample(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var sample models.RiskSample
	err = models.DB.First(&sample, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&sample).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// AnalyzeRequest selects the risk category the analysis service is asked
// about.
type AnalyzeRequest struct {
	RiskType string `json:"riskType" example:"weather"` // Risk category to analyze, defaults to weather
}

// @Summary		Analyze project risk
// @Description	Calls the external analysis service and stores the returned assessment as a new risk sample. Existing samples are never touched, a failed call leaves them as they are.
// @Tags			RiskSamples
// @Accept			json
// @Produce		json
// @Success		201		{object}	RiskSampleResponse
// @Failure		400		{object}	RiskSampleResponse
// @Failure		404		{object}	RiskSampleResponse
// @Failure		500		{object}	RiskSampleResponse
// @Failure		502		{object}	RiskSampleResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			request	body		AnalyzeRequest	false	"Analysis request"
// @Router			/v1/projects/{id}/risk/analyze [post]
func AnalyzeProjectRisk(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RiskSampleResponse{
			Error: &s,
		})
		return
	}

	var project models.Project
	err = models.DB.First(&project, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RiskSampleResponse{
			Error: &s,
		})
		return
	}

	// The body is optional and defaults to a weather assessment
	request := AnalyzeRequest{RiskType: models.RiskTypeWeather}
	if c.Request.ContentLength > 0 {
		err = httputil.BindData(c, &request)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), RiskSampleResponse{
				Error: &s,
			})
			return
		}
	}

	result, err := Analysis.Analyze(c.Request.Context(), analysis.Request{
		ProjectID: project.ID,
		Name:      project.Name,
		RiskType:  request.RiskType,
	})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RiskSampleResponse{
			Error: &s,
		})
		return
	}

	factors := make([]models.RiskFactor, 0, len(result.Factors))
	for _, factor := range result.Factors {
		factors = append(factors, models.RiskFactor{Name: factor.Name, Detail: factor.Detail})
	}

	sample := models.RiskSample{
		ProjectID:  project.ID,
		RiskType:   result.RiskType,
		Score:      result.Score,
		Factors:    factors,
		ValidUntil: result.ValidUntil,
		Active:     true,
	}

	err = models.DB.Create(&sample).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RiskSampleResponse{
			Error: &s,
		})
		return
	}

	data := newRiskSample(c.GetString(string(models.DBContextURL)), sample)
	c.JSON(http.StatusCreated, RiskSampleResponse{Data: &data})
}
