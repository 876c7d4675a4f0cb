package main

import (
	"net/http"

	"bitbucket.org/kargodata/forwarding_backend/models"
	"bitbucket.org/kargodata/forwarding_backend/utils"
	"github.com/gin-gonic/gin"
)

func paramInt(c *gin.Context, name string) (int, bool) {
	id, err := utils.StringToInt(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

func loginHandler(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindingError(c, err)
		return
	}

	token, session, err := models.Login(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": session})
}

/* Master data */

func createCustomerHandler(c *gin.Context) {
	var input models.NewCustomer
	if err := c.ShouldBindJSON(&input); err != nil {
		bindingError(c, err)
		return
	}
	customer, err := models.CreateCustomer(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func listCustomersHandler(c *gin.Context) {
	customers, err := models.GetCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func createChargeTypeHandler(c *gin.Context) {
	var input models.NewChargeType
	if err := c.ShouldBindJSON(&input); err != nil {
		bindingError(c, err)
		return
	}
	chargeType, err := models.CreateChargeType(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, chargeType)
}

func listChargeTypesHandler(c *gin.Context) {
	chargeTypes, err := models.GetChargeTypes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chargeTypes)
}

func createCurrencyHandler(c *gin.Context) {
	var input models.NewCurrency
	if err := c.ShouldBindJSON(&input); err != nil {
		bindingError(c, err)
		return
	}
	currency, err := models.CreateCurrency(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, currency)
}

func listCurrenciesHandler(c *gin.Context) {
	currencies, err := models.GetCurrencies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, currencies)
}

func createCurrencyExchangeHandler(c *gin.Context) {
	var input models.NewCurrencyExchange
	if err := c.ShouldBindJSON(&input); err != nil {
		bindingError(c, err)
		return
	}
	exchange, err := models.CreateCurrencyExchange(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exchange)
}

/* Bookings */

func createBookingHandler(c *gin.Context) {
	var input models.NewBooking
	if err := c.ShouldBindJSON(&input); err != nil {
		bindingError(c, err)
		return
	}
	booking, err := models.CreateBooking(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func listBookingsHandler(c *gin.Context) {
	bookings, err := models.GetBookings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func getBookingHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	booking, err := models.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func updateBookingStatusHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	var input struct {
		Status models.JobOrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		bindingError(c, err)
		return
	}
	booking, err := models.UpdateBookingStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

/* Shipment documents */

func createShipmentDocumentHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	var input models.NewShipmentDocument
	if err := c.ShouldBindJSON(&input); err != nil {
		bindingError(c, err)
		return
	}
	document, err := models.CreateShipmentDocument(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, document)
}

func listShipmentDocumentsHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	documents, err := models.GetShipmentDocuments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, documents)
}

/* Cost and revenue line items */

func createCostItemHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	var input models.NewLineItem
	if err := c.ShouldBindJSON(&input); err != nil {
		bindingError(c, err)
		return
	}
	item, err := models.CreateCostItem(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func listCostItemsHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	items, err := models.GetCostItems(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func updateCostItemStatusHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	var input struct {
		Status models.CostItemStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		bindingError(c, err)
		return
	}
	item, err := models.UpdateCostItemStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func createRevenueItemHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	var input models.NewLineItem
	if err := c.ShouldBindJSON(&input); err != nil {
		bindingError(c, err)
		return
	}
	item, err := models.CreateRevenueItem(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func listRevenueItemsHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	items, err := models.GetRevenueItems(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func updateRevenueItemStatusHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	var input struct {
		Status models.RevenueItemStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		bindingError(c, err)
		return
	}
	item, err := models.UpdateRevenueItemStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
