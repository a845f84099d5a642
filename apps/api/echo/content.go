package echoapi

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/content"
	"github.com/trezcool/darasa/core/user"
)

type contentApi struct {
	svc      content.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerContentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := contentApi{
		svc:      deps.ContentSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/classes", jwt)
	cg.GET("/:id/announcements", api.listAnnouncements)
	cg.POST("/:id/announcements", api.postAnnouncement)
	cg.GET("/:id/assignments", api.listAssignments)
	cg.POST("/:id/assignments", api.createAssignment, teacherMiddleware())

	ag := g.Group("/assignments", jwt)
	ag.GET("/:id", api.retrieveAssignment)
	ag.POST("/:id/submissions", api.submit, studentMiddleware())
	ag.GET("/:id/submissions", api.listSubmissions, teacherMiddleware())
	ag.GET("/:id/submissions/me", api.retrieveOwnSubmission, studentMiddleware())

	ng := g.Group("/announcements", jwt)
	ng.GET("/:id/comments", api.listComments)
	ng.POST("/:id/comments", api.postComment)

	fg := g.Group("/uploads", jwt)
	fg.GET("/:name", api.download)
}

// Handlers

func (api *contentApi) postAnnouncement(ctx echo.Context) error {
	var data content.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	ann, err := api.svc.PostAnnouncement(ctx.Request().Context(), ctxUsr, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ann)
}

func (api *contentApi) listAnnouncements(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	anns, err := api.svc.ListAnnouncements(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return err
	}
	if anns == nil {
		anns = []content.Announcement{}
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *contentApi) createAssignment(ctx echo.Context) error {
	var data content.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	a, err := api.svc.CreateAssignment(ctx.Request().Context(), ctxUsr, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *contentApi) listAssignments(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	asgs, err := api.svc.ListAssignments(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return err
	}
	if asgs == nil {
		asgs = []content.Assignment{}
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *contentApi) retrieveAssignment(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	a, err := api.svc.GetAssignment(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

// submit accepts a multipart form with an optional "file" part and an
// optional "comment" field.
func (api *contentApi) submit(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	data := content.NewSubmission{Comment: ctx.FormValue("comment")}

	if fh, err := ctx.FormFile("file"); err == nil && fh != nil {
		src, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening uploaded file")
		}
		defer func() { _ = src.Close() }()
		data.File = &content.Upload{
			Filename: fh.Filename,
			Size:     fh.Size,
			Content:  src,
		}
	}

	sub, err := api.svc.Submit(ctx.Request().Context(), ctxUsr, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *contentApi) retrieveOwnSubmission(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sub, err := api.svc.GetOwnSubmission(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *contentApi) listSubmissions(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	subs, err := api.svc.ListSubmissions(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return err
	}
	if subs == nil {
		subs = []content.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *contentApi) postComment(ctx echo.Context) error {
	var data content.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	cmt, err := api.svc.CommentOnAnnouncement(ctx.Request().Context(), ctxUsr, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cmt)
}

func (api *contentApi) listComments(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	cmts, err := api.svc.ListComments(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return err
	}
	if cmts == nil {
		cmts = []content.Comment{}
	}
	return ctx.JSON(http.StatusOK, cmts)
}

// download serves a stored submission file to any authenticated user.
func (api *contentApi) download(ctx echo.Context) error {
	name := filepath.Base(ctx.Param("name")) // no path traversal
	path := filepath.Join(core.Conf.Uploads.Dir, name)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return echo.NewHTTPError(http.StatusNotFound, "file not found")
		}
		return errors.Wrap(err, "checking upload file")
	}
	return ctx.Attachment(path, name)
}
