package chatControllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sunny-kumar-mit/ShopKart-Backend/apperrors"
)

const systemPrompt = `You are the intelligent shopping assistant for ShopKart, a premium e-commerce platform.
Your goal is to help users find products, answer questions, and assist with orders in a polite concierge tone.
Keep your answers concise, helpful, and professional.

You have access to the following TOOLS (actions):
1. navigate(path): Go to a specific page (e.g., '/cart', '/orders', '/help').
2. addToCart(productName): Add a specific product to the cart.
3. applyCoupon(code): Apply a discount coupon.
4. trackOrder(orderId): Check status of an order.

When a user asks to perform an action, respond with a JSON object in this format ONLY:
{ "action": "actionName", "params": { ... } }

If no action is needed, just provide a helpful text response.`

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionClient produces an assistant reply for a conversation. The
// handler falls back to templated answers when the client fails.
type CompletionClient interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// OpenAIClient calls an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

func NewOpenAIClientFromEnv() *OpenAIClient {
	return &OpenAIClient{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   "gpt-4o",
		BaseURL: "https://api.openai.com/v1",
	}
}

func (o *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if o.APIKey == "" {
		return "", fmt.Errorf("openai configuration missing")
	}

	payload := map[string]interface{}{
		"model":    o.Model,
		"messages": messages,
	}
	jsonData, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+o.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := o.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach OpenAI: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai API error (%d): %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func actionJSON(action, key, value string) string {
	out, _ := json.Marshal(map[string]interface{}{
		"action": action,
		"params": map[string]string{key: value},
	})
	return string(out)
}

// FallbackReply answers common questions with canned actions when the
// upstream model is unavailable.
func FallbackReply(lastMessage string, availableCoupons []string) string {
	msg := strings.ToLower(lastMessage)

	switch {
	case strings.Contains(msg, "order") || strings.Contains(msg, "track") || strings.Contains(msg, "status"):
		return actionJSON("navigate", "path", "/orders")
	case strings.Contains(msg, "return") || strings.Contains(msg, "refund"):
		return actionJSON("navigate", "path", "/orders")
	case strings.Contains(msg, "coupon") || strings.Contains(msg, "offer") || strings.Contains(msg, "discount"):
		coupons := "SAVE10"
		if len(availableCoupons) > 0 {
			coupons = strings.Join(availableCoupons, ", ")
		}
		return "We have some great coupons available! You can use: " + coupons + ". Would you like me to apply one?"
	case strings.Contains(msg, "cart") || strings.Contains(msg, "checkout"):
		return actionJSON("navigate", "path", "/cart")
	case strings.Contains(msg, "help") || strings.Contains(msg, "support") || strings.Contains(msg, "contact"):
		return actionJSON("navigate", "path", "/help")
	case strings.Contains(msg, "hi") || strings.Contains(msg, "hello") || strings.Contains(msg, "hey"):
		return "Hello! I can help you check orders, apply coupons, or find products. How can I assist you today?"
	}
	return "I'm currently in 'Offline Mode' due to high traffic, but I can still help you navigate ShopKart! Try asking about your orders, coupons, or cart."
}

var jsonBlockRe = regexp.MustCompile(`\{[\s\S]*\}`)

type chatRequest struct {
	Messages []Message              `json:"messages" binding:"required,min=1"`
	Context  map[string]interface{} `json:"context"`
}

// POST /api/chat
// Replies are either an action object (when the model or fallback named one)
// or plain text under "reply".
func HandleChat(client CompletionClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.Respond(c, apperrors.BadRequest(err.Error()))
			return
		}

		contextBlob, _ := json.Marshal(req.Context)
		conversation := append([]Message{
			{Role: "system", Content: systemPrompt},
			{Role: "system", Content: "Current User Context: " + string(contextBlob)},
		}, req.Messages...)

		reply, err := client.Complete(c.Request.Context(), conversation)
		if err != nil {
			log.Printf("⚠️ Chat completion failed, using fallback: %v", err)
			var coupons []string
			if raw, ok := req.Context["availableCoupons"].([]interface{}); ok {
				for _, v := range raw {
					if s, ok := v.(string); ok {
						coupons = append(coupons, s)
					}
				}
			}
			reply = FallbackReply(req.Messages[len(req.Messages)-1].Content, coupons)
		}

		// Action replies come back as JSON, sometimes embedded in prose.
		if candidate := jsonBlockRe.FindString(reply); candidate != "" {
			var action map[string]interface{}
			if err := json.Unmarshal([]byte(candidate), &action); err == nil {
				if _, ok := action["action"]; ok {
					c.JSON(http.StatusOK, action)
					return
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{"reply": reply})
	}
}
