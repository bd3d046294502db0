package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "rembgd/docs"
)

// mountDocs wires the interactive API documentation. Swagger UI lives under
// /docs and ReDoc under /redoc; both consume the generated OpenAPI document.
func mountDocs(r chi.Router) {
	r.Get("/docs", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/docs/index.html", http.StatusMovedPermanently)
	})
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))
	r.Get("/redoc", handleRedoc)
}
