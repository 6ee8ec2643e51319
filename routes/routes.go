package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	_ "jahit.id/workshop/docs"
	"jahit.id/workshop/handlers"
	"jahit.id/workshop/middleware"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/register", handlers.Register).Methods("POST")
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.HandleFunc("/token", handlers.GetCurrentUser).Methods("GET")
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir("./uploads"))),
	)

	// Order-link portal: the token in the path is the credential.
	r.HandleFunc("/api/order-links/{token}", handlers.GetOrderLinkByToken).Methods("GET")
	r.HandleFunc("/api/order-links/{token}/progress", handlers.SubmitProgress).Methods("POST")
	r.HandleFunc("/api/order-links/{token}/materials", handlers.SubmitMaterialUsage).Methods("POST")

	// The portal's material dropdown reads this without logging in.
	r.HandleFunc("/api/materials-management", handlers.GetMaterialsManagement).Methods("GET")

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTMiddleware)

	// Top-level deletes are admin-only; everything else any signed-in
	// user can do.
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireRole([]string{"admin"}, h)
	}

	// Contacts
	api.HandleFunc("/contacts", handlers.GetAllContacts).Methods("GET")
	api.HandleFunc("/contacts", handlers.CreateContact).Methods("POST")
	api.HandleFunc("/contacts/{id}", handlers.GetContact).Methods("GET")
	api.HandleFunc("/contacts/{id}", handlers.UpdateContact).Methods("PUT")
	api.Handle("/contacts/{id}", adminOnly(handlers.DeleteContact)).Methods("DELETE")
	api.HandleFunc("/contacts/{id}/notes", handlers.GetContactNotes).Methods("GET")
	api.HandleFunc("/contacts/{id}/notes", handlers.CreateContactNote).Methods("POST")

	// Products and variations
	api.HandleFunc("/products", handlers.GetAllProducts).Methods("GET")
	api.HandleFunc("/products", handlers.CreateProduct).Methods("POST")
	api.HandleFunc("/products/{id}", handlers.GetProduct).Methods("GET")
	api.HandleFunc("/products/{id}", handlers.UpdateProduct).Methods("PUT")
	api.Handle("/products/{id}", adminOnly(handlers.DeleteProduct)).Methods("DELETE")
	api.HandleFunc("/products/{productId}/variations", handlers.GetProductVariations).Methods("GET")
	api.HandleFunc("/products/{productId}/variations", handlers.CreateProductVariation).Methods("POST")
	api.HandleFunc("/products/{productId}/variations/search/{size}", handlers.SearchProductVariations).Methods("GET")
	api.HandleFunc("/products/{productId}/variations/{id}", handlers.GetProductVariation).Methods("GET")
	api.HandleFunc("/products/{productId}/variations/{id}", handlers.UpdateProductVariation).Methods("PUT")
	api.HandleFunc("/products/{productId}/variations/{id}", handlers.DeleteProductVariation).Methods("DELETE")

	// Materials
	api.HandleFunc("/materials", handlers.CreateMaterial).Methods("POST")
	api.HandleFunc("/materials/{id}", handlers.GetMaterial).Methods("GET")
	api.HandleFunc("/materials/{id}", handlers.UpdateMaterial).Methods("PUT")
	api.Handle("/materials/{id}", adminOnly(handlers.DeleteMaterial)).Methods("DELETE")
	api.HandleFunc("/materials/{id}/movements", handlers.GetMaterialMovements).Methods("GET")

	// Orders
	api.HandleFunc("/orders", handlers.GetAllOrders).Methods("GET")
	api.HandleFunc("/orders", handlers.CreateOrder).Methods("POST")
	api.HandleFunc("/orders/{id}", handlers.GetOrder).Methods("GET")
	api.HandleFunc("/orders/{id}", handlers.UpdateOrder).Methods("PUT")
	api.Handle("/orders/{id}", adminOnly(handlers.DeleteOrder)).Methods("DELETE")
	api.HandleFunc("/orders/{id}/links", handlers.GetOrderLinks).Methods("GET")
	api.HandleFunc("/orders/{id}/links", handlers.CreateOrderLink).Methods("POST")
	api.HandleFunc("/orders/{id}/export", handlers.ExportOrderRecap).Methods("GET")

	// Uploads
	api.HandleFunc("/upload", handlers.UploadFileHandler).Methods("POST")

	return r
}
