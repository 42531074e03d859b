// ABOUTME: Generates realistic mock trading conversations for demos and tests
// ABOUTME: Plain completion with retry; parameters default to a crude spot deal
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atstrading/dealrecap/internal/util"
)

// GenerateParams controls the mock conversation scenario. Zero values are
// replaced by a canonical crude spot deal.
type GenerateParams struct {
	Product      string
	Volume       float64
	VolumeUOM    string
	CounterParty string
	Office       string
	Desk         string
	DeliveryPort string
	Pricing      string
}

func (p *GenerateParams) applyDefaults() {
	if p.Product == "" {
		p.Product = "crude oil"
	}
	if p.Volume == 0 {
		p.Volume = 500000
	}
	if p.VolumeUOM == "" {
		p.VolumeUOM = "BBL"
	}
	if p.CounterParty == "" {
		p.CounterParty = "Shell Trading"
	}
	if p.Office == "" {
		p.Office = "ATS"
	}
	if p.Desk == "" {
		p.Desk = "crude"
	}
	if p.DeliveryPort == "" {
		p.DeliveryPort = "Rotterdam"
	}
	if p.Pricing == "" {
		p.Pricing = "Dated Brent plus a negotiated differential"
	}
}

// GenerateMockConversation produces a plausible trader-to-trader negotiation
// transcript for the given scenario. Retries transient failures with backoff.
func (c *Client) GenerateMockConversation(ctx context.Context, params GenerateParams) (string, error) {
	params.applyDefaults()
	prompt := generatePrompt(params)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(util.CalculateBackoff(c.retryDelay, attempt)):
			}
		}

		text, err := c.completeText(ctx, prompt)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("llm: model returned empty conversation")
	}
	return "", lastErr
}

func generatePrompt(p GenerateParams) string {
	return fmt.Sprintf(`Write a realistic instant-message negotiation between two energy traders closing a deal.

Scenario:
- Our trader sits on the %s office, %s desk.
- The counterparty is from %s.
- The deal is %.0f %s of %s, delivery %s, priced at %s.

Rules:
- Format each message as "Name: message" on its own line.
- Include realistic negotiation back-and-forth on volume, laycan, and price before agreement.
- Use first names and trading shorthand, 10 to 20 messages total.
- End with both sides confirming the deal.
Output only the conversation.`,
		p.Office, p.Desk, p.CounterParty, p.Volume, p.VolumeUOM, p.Product, p.DeliveryPort, p.Pricing)
}
