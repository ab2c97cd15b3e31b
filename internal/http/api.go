package http

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-api/internal/auth"
	"catalog-api/internal/domain"
	"catalog-api/internal/lookup"
	"catalog-api/internal/service"
	"catalog-api/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	products  service.ProductService
	tokens    *auth.Manager
	storage   storage.Service
	bucket    string
	keyPrefix string
	lookup    *lookup.Client
	logger    *logrus.Logger
}

func NewHandler(
	users service.UserService,
	products service.ProductService,
	tokens *auth.Manager,
	store storage.Service,
	bucket, keyPrefix string,
	lookupClient *lookup.Client,
	logger *logrus.Logger,
) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:     users,
		products:  products,
		tokens:    tokens,
		storage:   store,
		bucket:    bucket,
		keyPrefix: strings.Trim(keyPrefix, "/"),
		lookup:    lookupClient,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestLogger(h.logger))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			respond(c, http.StatusOK, gin.H{"status": "ok"})
		})

		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)

		api.GET("/lookup/weather", h.lookupWeather)
		api.GET("/lookup/country/:name", h.lookupCountry)
		api.GET("/lookup/joke", h.lookupJoke)

		protected := api.Group("")
		protected.Use(authMiddleware(h.tokens))
		{
			protected.GET("/profile", h.me)
			protected.GET("/users", h.listUsers)
			protected.GET("/users/:id", h.getUser)
			protected.PUT("/users/:id", h.updateUser)
			protected.DELETE("/users/:id", h.deleteUser)

			protected.POST("/products", h.createProduct)
			protected.GET("/products", h.listProducts)
			protected.GET("/products/:id", h.getProduct)
			protected.PUT("/products/:id", h.updateProduct)
			protected.DELETE("/products/:id", h.deleteProduct)
			protected.POST("/products/:id/image", h.uploadProductImage)
			protected.GET("/products/:id/image-url", h.productImageURL)
			protected.GET("/storage/objects", h.listStorageObjects)
		}
	}
}

type registerRequest struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	RegisterPassword string `json:"register_password"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
}

type UserResponse struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type ProductResponse struct {
	ID          int64  `json:"id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
	ImageKey    string `json:"image_key"`
	OwnerID     int64  `json:"owner_id"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.RegisterPassword)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, userToResponse(user))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(user)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		User:      userToResponse(user),
	})
}

func (h *Handler) me(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		writeError(c, auth.ErrMissingToken)
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, userToResponse(user))
}

func (h *Handler) listUsers(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok || !claims.IsAdmin() {
		writeError(c, service.ErrForbidden)
		return
	}

	limit, offset, err := pagination(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	users, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	respond(c, http.StatusOK, resp)
}

func (h *Handler) getUser(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		writeError(c, auth.ErrMissingToken)
		return
	}
	id, err := parseID(c)
	if err != nil {
		badRequest(c, "invalid user id")
		return
	}
	if claims.UserID != id && !claims.IsAdmin() {
		writeError(c, service.ErrForbidden)
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, userToResponse(user))
}

func (h *Handler) updateUser(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		writeError(c, auth.ErrMissingToken)
		return
	}
	id, err := parseID(c)
	if err != nil {
		badRequest(c, "invalid user id")
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.users.Update(c.Request.Context(), claims.UserID, claims.IsAdmin(), id, service.UpdateUserInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, userToResponse(user))
}

func (h *Handler) deleteUser(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		writeError(c, auth.ErrMissingToken)
		return
	}
	id, err := parseID(c)
	if err != nil {
		badRequest(c, "invalid user id")
		return
	}

	if err := h.users.Delete(c.Request.Context(), claims.IsAdmin(), id); err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) createProduct(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		writeError(c, auth.ErrMissingToken)
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	product, err := h.products.Create(c.Request.Context(), claims.UserID, service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, productToResponse(product))
}

func (h *Handler) listProducts(c *gin.Context) {
	limit, offset, err := pagination(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var products []domain.Product
	if ownerStr := c.Query("owner_id"); ownerStr != "" {
		ownerID, perr := strconv.ParseInt(ownerStr, 10, 64)
		if perr != nil || ownerID <= 0 {
			badRequest(c, "invalid owner_id")
			return
		}
		products, err = h.products.ListByOwner(c.Request.Context(), ownerID, limit, offset)
	} else {
		products, err = h.products.List(c.Request.Context(), limit, offset)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]ProductResponse, len(products))
	for i := range products {
		resp[i] = productToResponse(&products[i])
	}
	respond(c, http.StatusOK, resp)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		badRequest(c, "invalid product id")
		return
	}

	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, productToResponse(product))
}

func (h *Handler) updateProduct(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		writeError(c, auth.ErrMissingToken)
		return
	}
	id, err := parseID(c)
	if err != nil {
		badRequest(c, "invalid product id")
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	product, err := h.products.Update(c.Request.Context(), claims.UserID, claims.IsAdmin(), id, service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, productToResponse(product))
}

func (h *Handler) deleteProduct(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		writeError(c, auth.ErrMissingToken)
		return
	}
	id, err := parseID(c)
	if err != nil {
		badRequest(c, "invalid product id")
		return
	}

	product, err := h.products.Delete(c.Request.Context(), claims.UserID, claims.IsAdmin(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	var warnings []string
	if product.ImageKey != "" && h.storage != nil && h.bucket != "" {
		remoteCtx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		if err := h.storage.DeletePrefix(remoteCtx, h.bucket, h.imagePrefix(product.SKU)); err != nil {
			warnings = append(warnings, fmt.Sprintf("delete product images: %v", err))
		}
	}

	resp := gin.H{"deleted": product.ID}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	respond(c, http.StatusOK, resp)
}

func (h *Handler) uploadProductImage(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		writeError(c, auth.ErrMissingToken)
		return
	}
	id, err := parseID(c)
	if err != nil {
		badRequest(c, "invalid product id")
		return
	}
	if h.storage == nil || h.bucket == "" {
		badRequest(c, "storage service not configured")
		return
	}

	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if product.OwnerID != claims.UserID && !claims.IsAdmin() {
		writeError(c, service.ErrForbidden)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "image file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, fmt.Errorf("open uploaded file: %w", err))
		return
	}
	defer file.Close()

	key := fmt.Sprintf("%s/%s%s", h.imagePrefix(product.SKU), uuid.NewString(), filepath.Ext(fileHeader.Filename))
	contentType := fileHeader.Header.Get("Content-Type")

	uploadCtx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()
	if _, err := h.storage.Upload(uploadCtx, h.bucket, key, contentType, file); err != nil {
		writeError(c, err)
		return
	}

	product, err = h.products.SetImageKey(c.Request.Context(), claims.UserID, claims.IsAdmin(), id, key)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, productToResponse(product))
}

func (h *Handler) productImageURL(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		badRequest(c, "invalid product id")
		return
	}
	if h.storage == nil || h.bucket == "" {
		badRequest(c, "storage service not configured")
		return
	}

	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if product.ImageKey == "" {
		writeError(c, service.ErrNotFound)
		return
	}

	url, err := h.storage.GetObjectURL(c.Request.Context(), h.bucket, product.ImageKey, 15*time.Minute)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"url": url})
}

func (h *Handler) listStorageObjects(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok || !claims.IsAdmin() {
		writeError(c, service.ErrForbidden)
		return
	}
	if h.storage == nil || h.bucket == "" {
		badRequest(c, "storage service not configured")
		return
	}

	prefix := c.DefaultQuery("prefix", h.keyPrefix)
	objects, err := h.storage.ListObjects(c.Request.Context(), h.bucket, prefix)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	respond(c, http.StatusOK, resp)
}

func (h *Handler) lookupWeather(c *gin.Context) {
	if h.lookup == nil {
		badRequest(c, "lookup client not configured")
		return
	}
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		badRequest(c, "invalid lat")
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		badRequest(c, "invalid lon")
		return
	}

	weather, err := h.lookup.CurrentWeather(c.Request.Context(), lat, lon)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, weather)
}

func (h *Handler) lookupCountry(c *gin.Context) {
	if h.lookup == nil {
		badRequest(c, "lookup client not configured")
		return
	}
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		badRequest(c, "country name is required")
		return
	}

	country, err := h.lookup.CountryInfo(c.Request.Context(), name)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, country)
}

func (h *Handler) lookupJoke(c *gin.Context) {
	if h.lookup == nil {
		badRequest(c, "lookup client not configured")
		return
	}
	joke, err := h.lookup.RandomJoke(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, joke)
}

func (h *Handler) imagePrefix(sku string) string {
	if h.keyPrefix == "" {
		return sku
	}
	return h.keyPrefix + "/" + sku
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id")
	}
	return id, nil
}

func pagination(c *gin.Context) (limit, offset int, err error) {
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		return 0, 0, fmt.Errorf("invalid limit")
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return 0, 0, fmt.Errorf("invalid offset")
	}
	return limit, offset, nil
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

func productToResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		SKU:         product.SKU,
		Name:        product.Name,
		Description: product.Description,
		PriceCents:  product.PriceCents,
		Stock:       product.Stock,
		ImageKey:    product.ImageKey,
		OwnerID:     product.OwnerID,
		CreatedAt:   product.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   product.UpdatedAt.Format(time.RFC3339),
	}
}
