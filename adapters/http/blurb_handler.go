package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	blurbUC "github.com/khoahotran/fusion-resume/internal/application/usecase/blurb"
	"github.com/khoahotran/fusion-resume/internal/domain/blurb"
	"github.com/khoahotran/fusion-resume/pkg/apperror"
	"github.com/khoahotran/fusion-resume/pkg/logger"
)

type BlurbHandler struct {
	useCase *blurbUC.BlurbUseCase
	logger  logger.Logger
}

func NewBlurbHandler(uc *blurbUC.BlurbUseCase, log logger.Logger) *BlurbHandler {
	return &BlurbHandler{useCase: uc, logger: log}
}

func (h *BlurbHandler) RegisterRoutes(rg *gin.RouterGroup) {
	blurbs := rg.Group("/skill-blurbs")
	{
		blurbs.POST("", h.CreateSkillBlurb)
		blurbs.GET("", h.ListSkillBlurbs)
		blurbs.GET("/search", h.SearchSkillBlurbs)
		blurbs.GET("/user/:userId", h.ListSkillBlurbsByUser)
		blurbs.GET("/:id", h.GetSkillBlurb)
		blurbs.PUT("/:id", h.UpdateSkillBlurb)
		blurbs.DELETE("/:id", h.DeleteSkillBlurb)
	}
}

func parseInt64(raw, name string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.NewInvalidInput("'"+name+"' must be an integer", nil)
	}
	return v, nil
}

// bindBlurb decodes and validates the body. Nothing reaches the use case
// unless this succeeds.
func bindBlurb(c *gin.Context) (*SaveSkillBlurbRequest, bool) {
	var req SaveSkillBlurbRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return nil, false
	}
	if err := req.ToDomain(0).Validate(); err != nil {
		c.Error(apperror.NewInvalidInput("skill blurb validation failed", err))
		return nil, false
	}
	return &req, true
}

func (h *BlurbHandler) CreateSkillBlurb(c *gin.Context) {
	req, ok := bindBlurb(c)
	if !ok {
		return
	}

	saved, err := h.useCase.Save(c.Request.Context(), req.ToDomain(0))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToSkillBlurbDTO(saved))
}

func (h *BlurbHandler) ListSkillBlurbs(c *gin.Context) {
	blurbs, err := h.useCase.FindAll(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSkillBlurbDTOs(blurbs))
}

func (h *BlurbHandler) GetSkillBlurb(c *gin.Context) {
	id, err := parseInt64(c.Param("id"), "id")
	if err != nil {
		c.Error(err)
		return
	}

	b, found, err := h.useCase.FindByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	if !found {
		c.Error(apperror.NewNotFound("skill blurb", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, ToSkillBlurbDTO(b))
}

func (h *BlurbHandler) ListSkillBlurbsByUser(c *gin.Context) {
	userID, err := parseInt64(c.Param("userId"), "userId")
	if err != nil {
		c.Error(err)
		return
	}

	blurbs, err := h.useCase.FindByUserID(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSkillBlurbDTOs(blurbs))
}

// SearchSkillBlurbs filters one user's blurbs by title, else by keyword, else
// not at all. A present but empty parameter still counts as present.
func (h *BlurbHandler) SearchSkillBlurbs(c *gin.Context) {
	rawUserID, ok := c.GetQuery("userId")
	if !ok {
		c.Error(apperror.NewInvalidInput("'userId' query param is required", nil))
		return
	}
	userID, err := parseInt64(rawUserID, "userId")
	if err != nil {
		c.Error(err)
		return
	}

	ctx := c.Request.Context()
	var blurbs []*blurb.SkillBlurb
	if title, ok := c.GetQuery("title"); ok {
		blurbs, err = h.useCase.FindByUserIDAndTitle(ctx, userID, title)
	} else if keyword, ok := c.GetQuery("keyword"); ok {
		blurbs, err = h.useCase.FindByUserIDAndKeyword(ctx, userID, keyword)
	} else {
		blurbs, err = h.useCase.FindByUserID(ctx, userID)
	}
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSkillBlurbDTOs(blurbs))
}

// UpdateSkillBlurb overwrites the blurb at the path id. The existence check
// and the write are separate store calls; a concurrent delete in between
// surfaces as 404 from the write.
func (h *BlurbHandler) UpdateSkillBlurb(c *gin.Context) {
	id, err := parseInt64(c.Param("id"), "id")
	if err != nil {
		c.Error(err)
		return
	}
	req, ok := bindBlurb(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	exists, err := h.useCase.ExistsByID(ctx, id)
	if err != nil {
		c.Error(err)
		return
	}
	if !exists {
		c.Error(apperror.NewNotFound("skill blurb", c.Param("id")))
		return
	}

	updated, err := h.useCase.Save(ctx, req.ToDomain(id))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSkillBlurbDTO(updated))
}

// DeleteSkillBlurb has the same check-then-act gap as UpdateSkillBlurb; a row
// removed in between still answers 204.
func (h *BlurbHandler) DeleteSkillBlurb(c *gin.Context) {
	id, err := parseInt64(c.Param("id"), "id")
	if err != nil {
		c.Error(err)
		return
	}

	ctx := c.Request.Context()
	exists, err := h.useCase.ExistsByID(ctx, id)
	if err != nil {
		c.Error(err)
		return
	}
	if !exists {
		c.Error(apperror.NewNotFound("skill blurb", c.Param("id")))
		return
	}

	if err := h.useCase.DeleteByID(ctx, id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
