// Package stubserver implements the storefront API contract the client
// consumes, backed by in-memory state. It exists for local development and
// for integration tests; it is not the production server.
package stubserver

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/butrintmetaj7/shop-client/internal/domain"
)

const productsPerPage = 6

type account struct {
	user         domain.User
	passwordHash []byte
}

type Server struct {
	log *logrus.Logger

	mu       sync.Mutex
	accounts map[string]*account // keyed by email
	tokens   map[string]int      // bearer token -> user id
	nextID   int
	products []domain.Product
}

func New(logger *logrus.Logger) *Server {
	return &Server{
		log:      logger,
		accounts: make(map[string]*account),
		tokens:   make(map[string]int),
		nextID:   1,
		products: seedProducts(),
	}
}

// Router builds the gin engine serving the API contract.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/login", s.handleLogin)
	router.POST("/register", s.handleRegister)
	router.POST("/logout", s.requireAuth, s.handleLogout)
	router.GET("/user", s.requireAuth, s.handleCurrentUser)
	router.GET("/products", s.handleListProducts)
	router.GET("/products/:id", s.handleGetProduct)

	return router
}

func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		s.log.Warnf("Stub: invalid Authorization header format: %s", header)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
		return
	}

	s.mu.Lock()
	userID, ok := s.tokens[parts[1]]
	s.mu.Unlock()
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
		return
	}

	c.Set("userID", userID)
	c.Set("token", parts[1])
	c.Next()
}

func (s *Server) handleLogin(c *gin.Context) {
	var creds domain.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[strings.ToLower(creds.Email)]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(creds.Password)) != nil {
		s.log.Warnf("Stub: failed login attempt for %s", creds.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = acct.user.ID
	s.mu.Unlock()

	s.log.Infof("Stub: user %d logged in", acct.user.ID)
	c.JSON(http.StatusOK, domain.AuthResponse{User: acct.user, Token: token})
}

func (s *Server) handleRegister(c *gin.Context) {
	var creds domain.RegisterCredentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	creds.Email = strings.ToLower(strings.TrimSpace(creds.Email))
	creds.Name = strings.TrimSpace(creds.Name)

	if creds.Name == "" || creds.Email == "" || creds.Password == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Name, email and password are required"})
		return
	}
	if creds.Password != creds.PasswordConfirmation {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Password confirmation does not match"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		s.log.Errorf("Stub: failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[creds.Email]; exists {
		s.mu.Unlock()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "The email has already been taken."})
		return
	}
	user := domain.User{
		ID:    s.nextID,
		Name:  creds.Name,
		Email: creds.Email,
		Role:  "customer",
	}
	s.nextID++
	s.accounts[creds.Email] = &account{user: user, passwordHash: hash}
	token := uuid.NewString()
	s.tokens[token] = user.ID
	s.mu.Unlock()

	s.log.Infof("Stub: registered user %d (%s)", user.ID, user.Email)
	c.JSON(http.StatusCreated, domain.AuthResponse{User: user, Token: token})
}

func (s *Server) handleLogout(c *gin.Context) {
	token := c.GetString("token")
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCurrentUser(c *gin.Context) {
	userID := c.GetInt("userID")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acct := range s.accounts {
		if acct.user.ID == userID {
			c.JSON(http.StatusOK, acct.user)
			return
		}
	}
	c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
}

func (s *Server) handleListProducts(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	s.mu.Lock()
	products := make([]domain.Product, len(s.products))
	copy(products, s.products)
	s.mu.Unlock()

	total := len(products)
	lastPage := (total + productsPerPage - 1) / productsPerPage
	if lastPage < 1 {
		lastPage = 1
	}
	if page > lastPage {
		page = lastPage
	}

	start := (page - 1) * productsPerPage
	end := start + productsPerPage
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, domain.ProductPage{
		Data:        products[start:end],
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     productsPerPage,
		Total:       total,
	})
}

func (s *Server) handleGetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid product id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, product := range s.products {
		if product.ID == id {
			c.JSON(http.StatusOK, gin.H{"data": product})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
}

// RevokeToken invalidates a bearer token server-side, so tests can simulate
// a stored token that no longer validates.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

func seedProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Title: "Wireless Mouse", Price: 24.99, Description: "Compact 2.4GHz wireless mouse", Category: "electronics", Image: "/images/mouse.jpg"},
		{ID: 2, Title: "Mechanical Keyboard", Price: 89.90, Description: "Tenkeyless board with brown switches", Category: "electronics", Image: "/images/keyboard.jpg"},
		{ID: 3, Title: "USB-C Hub", Price: 39.50, Description: "7-in-1 hub with HDMI and card reader", Category: "electronics", Image: "/images/hub.jpg"},
		{ID: 4, Title: "Canvas Backpack", Price: 54.00, Description: "Water-resistant 20L daypack", Category: "accessories", Image: "/images/backpack.jpg"},
		{ID: 5, Title: "Steel Water Bottle", Price: 18.75, Description: "Insulated 750ml bottle", Category: "accessories", Image: "/images/bottle.jpg"},
		{ID: 6, Title: "Desk Lamp", Price: 32.40, Description: "Dimmable LED lamp with USB port", Category: "home", Image: "/images/lamp.jpg"},
		{ID: 7, Title: "Notebook Set", Price: 12.00, Description: "Three dotted A5 notebooks", Category: "stationery", Image: "/images/notebooks.jpg"},
		{ID: 8, Title: "Ceramic Mug", Price: 9.99, Description: "350ml stoneware mug", Category: "home", Image: "/images/mug.jpg"},
	}
}
