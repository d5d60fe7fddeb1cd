package frontend

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikey/chainblog/internal/core"
	"go.uber.org/zap"
)

type textRequest struct {
	Text string `json:"text" binding:"required"`
}

type topicRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// campaignRequest carries wei amounts as decimal strings
type campaignRequest struct {
	Owner       string `json:"owner" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Image       string `json:"image"`
	Target      string `json:"target" binding:"required"`
	Deadline    uint64 `json:"deadline" binding:"required"`
}

type donationRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type campaignView struct {
	ID              int64    `json:"id"`
	Owner           string   `json:"owner"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Image           string   `json:"image,omitempty"`
	Target          string   `json:"target"`
	AmountCollected string   `json:"amount_collected"`
	Deadline        uint64   `json:"deadline"`
	Donators        []string `json:"donators"`
	Donations       []string `json:"donations"`
}

func newCampaignView(c *core.Campaign) campaignView {
	view := campaignView{
		ID:              c.ID,
		Owner:           c.Owner,
		Title:           c.Title,
		Description:     c.Description,
		Image:           c.Image,
		Target:          decimal(c.Target),
		AmountCollected: decimal(c.AmountCollected),
		Deadline:        c.Deadline,
		Donators:        c.Donators,
		Donations:       make([]string, len(c.Donations)),
	}
	if view.Donators == nil {
		view.Donators = []string{}
	}
	for i, d := range c.Donations {
		view.Donations[i] = decimal(d)
	}
	return view
}

func decimal(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseWei(s string) (*big.Int, bool) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() <= 0 {
		return nil, false
	}
	return v, true
}

func (r *campaignRequest) draft() (*core.CampaignDraft, bool) {
	target, ok := parseWei(r.Target)
	if !ok {
		return nil, false
	}
	return &core.CampaignDraft{
		Owner:       r.Owner,
		Title:       r.Title,
		Description: r.Description,
		Image:       r.Image,
		Target:      target,
		Deadline:    r.Deadline,
	}, true
}

func campaignID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return 0, false
	}
	return id, true
}

func (f *HTTPFrontend) moderate(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	verdict, err := f.classifier.Classify(c.Request.Context(), req.Text)
	if err != nil {
		f.respondError(c, "classify", err)
		return
	}
	c.JSON(http.StatusOK, verdict)
}

func (f *HTTPFrontend) summarize(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := f.writer.Summarize(c.Request.Context(), req.Text)
	if err != nil {
		f.respondError(c, "summarize", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (f *HTTPFrontend) draft(c *gin.Context) {
	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, err := f.writer.Draft(c.Request.Context(), req.Topic)
	if err != nil {
		f.respondError(c, "draft", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

func (f *HTTPFrontend) listCampaigns(c *gin.Context) {
	status, err := core.ParseStatus(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sortBy, err := core.ParseSortBy(c.Query("sort"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaigns, err := f.campaigns.List(c.Request.Context(), core.CampaignQuery{
		Text:   c.Query("q"),
		Status: status,
		SortBy: sortBy,
	})
	if err != nil {
		f.respondError(c, "list_campaigns", err)
		return
	}

	views := make([]campaignView, len(campaigns))
	for i := range campaigns {
		views[i] = newCampaignView(&campaigns[i])
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": views, "count": len(views)})
}

func (f *HTTPFrontend) getCampaign(c *gin.Context) {
	id, ok := campaignID(c)
	if !ok {
		return
	}

	campaign, err := f.campaigns.Get(c.Request.Context(), id)
	if err != nil {
		f.respondError(c, "get_campaign", err)
		return
	}
	c.JSON(http.StatusOK, newCampaignView(campaign))
}

func (f *HTTPFrontend) createCampaign(c *gin.Context) {
	var req campaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draft, ok := req.draft()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target must be a positive decimal wei amount"})
		return
	}

	result, err := f.campaigns.Create(c.Request.Context(), draft)
	if err != nil {
		f.respondError(c, "create_campaign", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (f *HTTPFrontend) editCampaign(c *gin.Context) {
	id, ok := campaignID(c)
	if !ok {
		return
	}
	var req campaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draft, ok := req.draft()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target must be a positive decimal wei amount"})
		return
	}

	result, err := f.campaigns.Edit(c.Request.Context(), id, draft)
	if err != nil {
		f.respondError(c, "edit_campaign", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (f *HTTPFrontend) deleteCampaign(c *gin.Context) {
	id, ok := campaignID(c)
	if !ok {
		return
	}

	if err := f.campaigns.Delete(c.Request.Context(), id); err != nil {
		f.respondError(c, "delete_campaign", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (f *HTTPFrontend) donate(c *gin.Context) {
	id, ok := campaignID(c)
	if !ok {
		return
	}
	var req donationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, ok := parseWei(req.Amount)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive decimal wei amount"})
		return
	}

	if err := f.campaigns.Donate(c.Request.Context(), id, amount); err != nil {
		f.respondError(c, "donate", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "amount": amount.String()})
}

// respondError maps service errors onto HTTP statuses
func (f *HTTPFrontend) respondError(c *gin.Context, operation string, err error) {
	var rejected *core.RejectedError
	status := http.StatusBadGateway
	body := gin.H{"error": err.Error()}

	switch {
	case errors.As(err, &rejected):
		status = http.StatusUnprocessableEntity
		body = gin.H{"error": "content rejected by moderation", "detail": rejected.Detail}
	case errors.Is(err, core.ErrInvalidCampaign), errors.Is(err, core.ErrEmptyInput):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrCampaignNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, core.ErrMissingCredential),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}

	_ = c.Error(err)
	f.logger.Warn("Request failed",
		zap.String("operation", operation),
		zap.Int("status", status),
		zap.Error(err))
	c.JSON(status, body)
}
