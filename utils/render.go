package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// viewer keys set by the auth middlewares; mirrored here so templates
// can always rely on the same names.
const (
	ViewerIDKey   = "viewer_id"
	ViewerNameKey = "viewer_name"
)

// Render writes an HTML page, folding the signed-in viewer (when any)
// into the template data under "Viewer".
func Render(ctx *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Viewer"]; !ok {
		if v, exists := ctx.Get(ViewerNameKey); exists {
			data["Viewer"] = v
		} else {
			data["Viewer"] = ""
		}
	}
	ctx.HTML(status, name, data)
}

// NotFound renders the generic not-found page.
func NotFound(ctx *gin.Context) {
	Render(ctx, http.StatusNotFound, "404.html", gin.H{})
}
