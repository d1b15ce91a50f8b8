package adminstub

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sangkips/admin-console/internal/domain/entity"
)

// Server is a development stand-in for the admin API
type Server struct {
	fixture *Fixture
	logger  *zap.Logger
	seq     atomic.Int64
	now     func() time.Time
}

// NewServer creates a stub serving fixture
func NewServer(fixture *Fixture, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{fixture: fixture, logger: logger, now: time.Now}
}

// Router returns the gin engine exposing the admin endpoints
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	admin := r.Group("/api/admin")
	{
		admin.GET("/getAllClients", s.getAllClients)
		admin.GET("/getAllProducts", s.getAllProducts)
		admin.POST("/createInvoice", s.createInvoice)
	}
	return r
}

func (s *Server) getAllClients(c *gin.Context) {
	c.JSON(http.StatusOK, s.fixture.ClientRecords())
}

func (s *Server) getAllProducts(c *gin.Context) {
	c.JSON(http.StatusOK, s.fixture.ProductRecords())
}

func (s *Server) createInvoice(c *gin.Context) {
	var req entity.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid invoice payload"})
		return
	}

	slip, err := s.price(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	body, err := RenderSlip(slip)
	if err != nil {
		s.logger.Error("failed to render invoice slip", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not generate invoice"})
		return
	}

	s.logger.Info("invoice created",
		zap.String("number", slip.Number),
		zap.String("client_id", req.ClientID),
		zap.String("total", slip.Total.StringFixed(2)),
	)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", entity.InvoiceSlipFilename))
	c.Data(http.StatusOK, entity.InvoiceSlipContentType, body)
}

// price validates the request and computes line and invoice totals
func (s *Server) price(req *entity.InvoiceRequest) (*Slip, error) {
	client, ok := s.fixture.clientByBillingID(req.ClientID)
	if !ok {
		return nil, fmt.Errorf("Client %q not found", req.ClientID)
	}
	if len(req.Services) == 0 {
		return nil, errors.New("At least one service is required")
	}
	if req.GST < 0 || req.GST > 100 {
		return nil, errors.New("GST must be between 0 and 100")
	}

	slip := &Slip{
		Number:   fmt.Sprintf("INV-%s-%04d", s.now().Format("200601"), s.seq.Add(1)),
		IssuedAt: s.now(),
		Company:  s.fixture.Company,
		Client:   client,
		GSTRate:  req.GST,
		SubTotal: decimal.Zero,
	}

	for i, svc := range req.Services {
		price, err := decimal.NewFromString(svc.UnitPrice.String())
		if err != nil {
			return nil, fmt.Errorf("Service %d has an invalid unit price", i+1)
		}
		if svc.Quantity < 1 {
			return nil, fmt.Errorf("Service %d quantity must be at least 1", i+1)
		}
		start, err := time.Parse(time.RFC3339, svc.StartDate)
		if err != nil {
			return nil, fmt.Errorf("Service %d has an invalid start date", i+1)
		}
		end, err := time.Parse(time.RFC3339, svc.EndDate)
		if err != nil {
			return nil, fmt.Errorf("Service %d has an invalid end date", i+1)
		}

		amount := price.Mul(decimal.NewFromInt(int64(svc.Quantity)))
		slip.SubTotal = slip.SubTotal.Add(amount)
		slip.Lines = append(slip.Lines, SlipLine{
			Product:     svc.Product,
			Description: svc.ServiceDescription,
			Duration:    svc.Duration,
			Period:      start.Format("02 Jan 06") + " - " + end.Format("02 Jan 06"),
			Quantity:    svc.Quantity,
			UnitPrice:   price,
			Amount:      amount,
		})
	}

	slip.GSTAmount = slip.SubTotal.Mul(decimal.NewFromInt(int64(req.GST))).Div(decimal.NewFromInt(100)).Round(2)
	slip.Total = slip.SubTotal.Add(slip.GSTAmount)
	return slip, nil
}
