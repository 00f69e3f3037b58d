// Package httpserver exposes the HTTP surface: health, the gateway socket,
// the text chat API and Prometheus metrics.
package httpserver

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rashmiranjanaiet/ai-web/internal/chat"
	"github.com/rashmiranjanaiet/ai-web/internal/gateway"
)

// Chat answers routed text questions.
type Chat interface {
	Ask(ctx context.Context, question string) (*chat.Reply, error)
}

// ChatRecorder counts chat requests and failures. May be nil.
type ChatRecorder interface {
	RecordChat(route string, seconds float64)
	RecordChatFailure()
}

// Server bundles HTTP router and dependencies.
type Server struct {
	Router http.Handler
}

// New constructs the HTTP server with routes.
func New(gw *gateway.Handler, chatClient Chat, rec ChatRecorder) *Server {
	e := newRouter()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/ws", func(c echo.Context) error {
		gw.ServeWS(c.Response(), c.Request())
		return nil
	})

	e.POST("/api/chat", handleChat(chatClient, rec))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return &Server{Router: e}
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Text      string          `json:"text"`
	Route     string          `json:"route"`
	Citations []chat.Citation `json:"citations,omitempty"`
}

func handleChat(chatClient Chat, rec ChatRecorder) echo.HandlerFunc {
	return func(c echo.Context) error {
		if chatClient == nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "chat is not configured"})
		}
		var req chatRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
		}
		if strings.TrimSpace(req.Question) == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "question is empty"})
		}
		started := time.Now()
		reply, err := chatClient.Ask(c.Request().Context(), req.Question)
		if err != nil {
			log.Printf("httpserver: chat error: %v", err)
			if rec != nil {
				rec.RecordChatFailure()
			}
			return c.JSON(http.StatusBadGateway, map[string]string{"error": "the assistant could not answer"})
		}
		if rec != nil {
			rec.RecordChat(reply.Route.String(), time.Since(started).Seconds())
		}
		return c.JSON(http.StatusOK, chatResponse{Text: reply.Text, Route: reply.Route.String(), Citations: reply.Citations})
	}
}
