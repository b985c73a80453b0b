package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/middleware"
	"resumebuilder/internal/models"
	"resumebuilder/internal/services"
)

// Envelope is the uniform response shape:
// {status: success|fail|error, data?, token?, message?, results?}.
type Envelope struct {
	Status  string `json:"status"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondData(c *gin.Context, code int, data any) {
	c.JSON(code, Envelope{Status: "success", Data: data})
}

func respondMessage(c *gin.Context, code int, msg string) {
	c.JSON(code, Envelope{Status: "success", Message: msg})
}

func respondList(c *gin.Context, docs any, count int) {
	c.JSON(http.StatusOK, Envelope{Status: "success", Results: &count, Data: gin.H{"data": docs}})
}

// respondError maps the error taxonomy onto status codes; 4xx are "fail",
// everything else degrades to a generic "error" without leaking internals.
func respondError(c *gin.Context, err error) {
	code := apperrors.StatusCode(err)
	status := "error"
	if code >= 400 && code < 500 {
		status = "fail"
	}
	c.JSON(code, Envelope{Status: status, Message: apperrors.PublicMessage(err)})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Envelope{Status: "fail", Message: err.Error()})
}

// issueSession signs a token for the user and returns it both in the body
// and as an httpOnly cookie. The user serialization never carries the
// password hash (json:"-" on the model).
func issueSession(c *gin.Context, auth services.AuthService, log zerolog.Logger, user *models.User, code int) {
	token, err := auth.IssueToken(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to sign session token")
		respondError(c, err)
		return
	}
	setSessionCookie(c, token, int(auth.CookieTTL().Seconds()))
	c.JSON(code, Envelope{
		Status: "success",
		Token:  token,
		Data:   gin.H{"user": user},
	})
}

// setSessionCookie mirrors the token into an httpOnly cookie; Secure when the
// request came over TLS directly or through a trusted proxy.
func setSessionCookie(c *gin.Context, token string, maxAgeSeconds int) {
	secure := c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
	c.SetCookie(middleware.SessionCookieName, token, maxAgeSeconds, "/", "", secure, true)
}

func clearSessionCookie(c *gin.Context) {
	secure := c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", secure, true)
}

// projectFields keeps only the requested JSON fields of a document, plus id.
// Projection happens at serialization time so it can never change which rows
// a query returns.
func projectFields(doc any, fields []string) any {
	if len(fields) == 0 {
		return doc
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return doc
	}
	full := map[string]any{}
	if err := json.Unmarshal(raw, &full); err != nil {
		return doc
	}
	out := map[string]any{}
	if id, ok := full["id"]; ok {
		out["id"] = id
	}
	for _, f := range fields {
		if v, ok := full[f]; ok {
			out[f] = v
		}
	}
	return out
}

func projectList[T any](docs []*T, fields []string) []any {
	out := make([]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, projectFields(d, fields))
	}
	return out
}
