package server

import (
	auctionhandler "auction-house/services/auctions/handler"
	settlementhandler "auction-house/services/settlement/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(auctionSvc auctionhandler.AuctionServiceInterface, settlementSvc settlementhandler.SettlementServiceInterface) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := auctionhandler.NewAuctionHandler(auctionSvc)
	settlementHandler := settlementhandler.NewSettlementHandler(settlementSvc)

	auctions := router.Group("/auctions")
	{
		auctions.POST("/:auction_id/bid", auctionHandler.PlaceBidHandler)
		auctions.POST("/:auction_id/end", auctionHandler.EndAuctionHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.GET("/:auction_id/bids", auctionHandler.GetBidsByAuctionHandler)
		auctions.GET("/:auction_id/winning", auctionHandler.GetWinningBidHandler)
	}

	wallets := router.Group("/wallets")
	{
		wallets.GET("/:user_id", auctionHandler.GetWalletHandler)
	}

	orders := router.Group("/orders")
	{
		orders.POST("/:order_id/confirm-delivery", settlementHandler.ConfirmDeliveryHandler)
		orders.POST("/:order_id/dispute", settlementHandler.OpenDisputeHandler)
	}

	escrows := router.Group("/escrows")
	{
		escrows.POST("/:escrow_id/release", settlementHandler.ReleaseEscrowHandler)
	}

	withdrawals := router.Group("/withdrawals")
	{
		withdrawals.POST("", settlementHandler.RequestWithdrawalHandler)
		withdrawals.POST("/:withdrawal_id/approve", settlementHandler.ApproveWithdrawalHandler)
		withdrawals.POST("/:withdrawal_id/reject", settlementHandler.RejectWithdrawalHandler)
	}

	return router
}
