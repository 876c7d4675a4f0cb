package main

import (
	"errors"
	"net/http"
	"time"

	"bitbucket.org/kargodata/forwarding_backend/config"
	"bitbucket.org/kargodata/forwarding_backend/models"
	"bitbucket.org/kargodata/forwarding_backend/utils"
	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func getBookingTermsHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	views, err := models.GetBookingTermStatuses(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func createBookingTermsHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	var input models.NewInvoiceTermSet
	if err := c.ShouldBindJSON(&input); err != nil {
		bindingError(c, err)
		return
	}
	terms, err := models.CreateInvoiceTerms(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, terms)
}

func replaceBookingTermsHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	var input models.NewInvoiceTermSet
	if err := c.ShouldBindJSON(&input); err != nil {
		bindingError(c, err)
		return
	}
	terms, err := models.ReplaceInvoiceTerms(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, terms)
}

// generateTermInvoiceHandler invoices one ready term. A short per-booking
// redis lock keeps two operators from racing the same booking; the conditional
// write on the invoiced flag stays the real guard when the lock is
// unavailable.
func generateTermInvoiceHandler(c *gin.Context) {
	bookingId, ok := paramInt(c, "id")
	if !ok {
		return
	}
	termId, ok := paramInt(c, "termId")
	if !ok {
		return
	}

	var input struct {
		TaxRate string `json:"tax_rate"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			bindingError(c, err)
			return
		}
	}

	taxRate := models.DefaultTaxRate()
	if input.TaxRate != "" {
		parsed, err := utils.ParseDecimal(input.TaxRate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tax_rate must be numeric"})
			return
		}
		taxRate = parsed
	}
	if taxRate.LessThan(decimal.Zero) {
		respondError(c, models.ErrInvalidTaxRate)
		return
	}

	ctx, span := tracer.Start(c.Request.Context(), "generateTermInvoice")
	defer span.End()

	businessId, _ := utils.GetBusinessIdFromContext(ctx)
	if locker := config.GetRedisLock(); locker != nil {
		lockKey := "InvoiceLock:" + businessId + ":" + utils.IntToString(bookingId)
		lock, err := locker.Obtain(ctx, lockKey, 10*time.Second, nil)
		if err != nil {
			if errors.Is(err, redislock.ErrNotObtained) {
				c.JSON(http.StatusConflict, gin.H{"error": "another invoice is being generated for this booking"})
				return
			}
			config.LogError(config.GetLogger(), "main", "generateTermInvoiceHandler", "obtain lock", lockKey, err)
		} else {
			defer lock.Release(ctx)
		}
	}

	invoice, err := models.GenerateTermInvoice(ctx, bookingId, termId, taxRate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}
