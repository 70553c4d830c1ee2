package controllers

import (
	"net/http"
	"strings"

	dbpkg "clara/db"
	"clara/models"

	"github.com/gin-gonic/gin"
)

// Catálogo de produtos: alimenta o preâmbulo de sistema da IA.

// GET /api/products
func GetProducts(c *gin.Context) {
	st := dbpkg.StoreInstance(c)
	if st == nil {
		RespondError(c, "store não configurado no contexto", http.StatusInternalServerError)
		return
	}

	products, err := st.ListProducts()
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, products)
}

type productReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Active      *bool   `json:"active"`
}

// POST /api/products
func CreateProduct(c *gin.Context) {
	st := dbpkg.StoreInstance(c)
	if st == nil {
		RespondError(c, "store não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var req productReq
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		RespondError(c, "name é obrigatório", http.StatusBadRequest)
		return
	}

	p := models.Product{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Active:      true,
	}
	if req.Active != nil {
		p.Active = *req.Active
	}

	if err := st.SaveProduct(&p); err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"product": p})
}

// PUT /api/products/:id
func UpdateProduct(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	st := dbpkg.StoreInstance(c)
	if st == nil {
		RespondError(c, "store não configurado no contexto", http.StatusInternalServerError)
		return
	}

	p, err := st.GetProduct(id)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if p == nil {
		RespondError(c, "produto não encontrado", http.StatusNotFound)
		return
	}

	var req productReq
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		p.Name = name
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		p.Description = desc
	}
	if req.Price > 0 {
		p.Price = req.Price
	}
	if req.Active != nil {
		p.Active = *req.Active
	}

	if err := st.SaveProduct(p); err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"product": p})
}

// DELETE /api/products/:id
func DeleteProduct(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	st := dbpkg.StoreInstance(c)
	if st == nil {
		RespondError(c, "store não configurado no contexto", http.StatusInternalServerError)
		return
	}

	if err := st.DeleteProduct(id); err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, true)
}
