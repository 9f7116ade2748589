package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/cosmasken/kaspa402/internal/model"
	"github.com/cosmasken/kaspa402/pkg/paging"
)

const defaultUTXOPageSize = 25

func networkFromQuery(c *gin.Context) model.Network {
	if c.Query("network") == "testnet" {
		return model.Testnet
	}
	return model.Mainnet
}

func (s *Server) walletHealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		address := c.Param("address")
		health, err := s.mgr.WalletHealth(c.Request.Context(), address, networkFromQuery(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": health})
	}
}

func (s *Server) consolidationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		address := c.Param("address")
		rec, err := s.mgr.ConsolidationRecommendations(c.Request.Context(), address, networkFromQuery(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": rec})
	}
}

// utxoListHandler returns a page of the address's enriched UTXOs. Paging
// keeps responses bounded for wallets that have accumulated thousands of
// small UTXOs instead of serializing the whole set on every poll.
func (s *Server) utxoListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		address := c.Param("address")

		page, _ := strconv.Atoi(c.Query("page"))
		if page < 0 {
			page = 0
		}
		pageSize, _ := strconv.Atoi(c.Query("page_size"))
		if pageSize <= 0 {
			pageSize = defaultUTXOPageSize
		}

		utxos, err := s.mgr.ListUTXOs(c.Request.Context(), address, networkFromQuery(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data":      paging.Paginate(utxos, page, pageSize),
			"total":     len(utxos),
			"page":      page,
			"page_size": pageSize,
		})
	}
}

type selectRequest struct {
	AmountSompi string `json:"amount_sompi" binding:"required"`
}

func (s *Server) selectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		address := c.Param("address")

		var req selectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		amount, err := decimal.NewFromString(req.AmountSompi)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount_sompi"})
			return
		}

		selected, err := s.mgr.SelectForPayment(c.Request.Context(), address, amount, networkFromQuery(c))
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": selected})
	}
}
