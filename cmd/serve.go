package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/relaymaps/relaygeo/geodb"
	"github.com/relaymaps/relaygeo/resolver"
	"github.com/relaymaps/relaygeo/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve relay geolocation lookups over HTTP",
	Run:   execServe,
}

func init() {
	serveCmd.PersistentFlags().String("binding", "0.0.0.0", "API binding")
	serveCmd.PersistentFlags().Int("port", 9912, "API port")

	viper.BindPFlag("api.binding", serveCmd.PersistentFlags().Lookup("binding"))
	viper.BindPFlag("api.port", serveCmd.PersistentFlags().Lookup("port"))

	rootCmd.AddCommand(serveCmd)
}

type apiServer struct {
	index    *geodb.Index
	pipeline *resolver.Pipeline
}

func (s *apiServer) ping(c echo.Context) error {
	return c.String(http.StatusOK, "pong")
}

func (s *apiServer) locateURL(c echo.Context) error {
	rawURL := c.QueryParam("url")
	if rawURL == "" {
		return c.JSON(http.StatusBadRequest, utils.ErrorResponse{
			Error: "url query parameter is required",
		})
	}

	log.Debug().Str("url", rawURL).Msg("locating relay")

	outcome := s.pipeline.ResolveAndLocate(c.Request().Context(), rawURL)
	if outcome == nil {
		return c.JSON(http.StatusNotFound, utils.ErrorResponse{
			Error: "endpoint could not be located",
		})
	}

	return c.JSON(http.StatusOK, outcome)
}

func (s *apiServer) locateIP(c echo.Context) error {
	address := c.Param("address")

	ip, err := geodb.ParseIPv4(address)
	if err != nil {
		return c.JSON(http.StatusBadRequest, utils.ErrorResponse{
			Error: err.Error(),
		})
	}

	loc, ok := s.index.Lookup(ip)
	if !ok {
		return c.JSON(http.StatusNotFound, utils.ErrorResponse{
			Error: "address is not covered by the dataset",
		})
	}

	return c.JSON(http.StatusOK, loc)
}

func (s *apiServer) register(e *echo.Echo) {
	e.GET("/_ping", s.ping)
	e.GET("/v1/locate", s.locateURL)
	e.GET("/v1/ip/:address", s.locateIP)
}

func execServe(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	index := mustLoadIndex(ctx)
	server := &apiServer{
		index:    index,
		pipeline: newPipeline(ctx, index),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestID())
	e.Use(utils.ZeroLogger(&log.Logger))
	server.register(e)

	go func() {
		addr := fmt.Sprintf("%s:%d", viper.GetString("api.binding"), viper.GetInt("api.port"))
		log.Info().Str("addr", addr).Msg("starting the api server")

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to start the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down the server")
	}
}
