// ABOUTME: Deal extraction via a forced tool call against the chat model
// ABOUTME: Builds the extraction ontology prompt and validates tool arguments
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/atstrading/dealrecap/internal/models"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const extractionToolName = "extract_deal_reference"

// ExtractDealFromConversation analyses a trading conversation and returns a
// partial deal, or nil when the model finds no deal. The optional user roster
// biases office, desk, and counterparty inference.
func (c *Client) ExtractDealFromConversation(ctx context.Context, conversation string, users []models.User) (*models.Deal, error) {
	return c.extractDeal(ctx, "conversation", conversation, users)
}

// ExtractDealFromEmail analyses a full email chain the same way.
func (c *Client) ExtractDealFromEmail(ctx context.Context, emailContent string, users []models.User) (*models.Deal, error) {
	return c.extractDeal(ctx, "email chain", emailContent, users)
}

func (c *Client) extractDeal(ctx context.Context, sourceKind, text string, users []models.User) (*models.Deal, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: extractionSystemPrompt(sourceKind, users),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Please extract deal information from this %s:\n\n%s", sourceKind, text),
			},
		},
		Tools: []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        extractionToolName,
					Description: fmt.Sprintf("Extract structured deal reference information from a trading %s", sourceKind),
					Parameters:  dealToolSchema(),
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: extractionToolName},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, transportError(err)
	}

	// No tool call means the model declined to identify a deal. That is a
	// normal outcome, not an error.
	if len(resp.Choices) == 0 {
		return nil, nil
	}
	for _, call := range resp.Choices[0].Message.ToolCalls {
		if call.Function.Name == extractionToolName {
			return parseDealArguments(call.Function.Arguments)
		}
	}
	return nil, nil
}

// extractionSystemPrompt enumerates the extraction ontology and, when a
// roster is supplied, the participant context used to bias inference.
func extractionSystemPrompt(sourceKind string, users []models.User) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `You are an expert deal extraction AI for the energy trading industry. Your task is to analyze a %s between traders and extract structured deal information.

Extract deal information about crude oil, gasoline, diesel, jet fuel, and fuel oil trading. Look for:
- Counter party company names
- Product types (%s) - THIS IS REQUIRED
- Volumes and units of measurement (%s)
- Delivery methods (%s)
- Delivery ports and locations
- Laycan periods (loading/canceling dates)
- Pricing information (fixed prices or basis + differential)
- Incoterms (%s)
- Inspection agents (%s)
- Deal types (%s)
- Deal subtypes (%s)
`,
		sourceKind,
		strings.Join(models.Products, ", "),
		strings.Join(models.VolumeUnits, ", "),
		strings.Join(models.DeliveryMethods, ", "),
		strings.Join(models.IncoTerms, ", "),
		strings.Join(models.InspectionAgents, ", "),
		strings.Join(models.DealTypes, ", "),
		strings.Join(models.DealSubtypes, ", "))

	if len(users) > 0 {
		sb.WriteString("\nUSER CONTEXT:\n")
		for _, u := range users {
			side := "Our Company"
			if u.IsCounterparty {
				side = "Counterparty"
			}
			company := u.Company
			if company == "" {
				company = "Unknown Company"
			}
			fmt.Fprintf(&sb, "- %s (%s): %s - %s", u.Name, u.Email, side, company)
			if u.Office != "" {
				fmt.Fprintf(&sb, " - Office: %s", u.Office)
			}
			if u.Desk != "" {
				fmt.Fprintf(&sb, " - Desk: %s", u.Desk)
			}
			sb.WriteString("\n")
		}
		sb.WriteString(`
Based on the user context above:
- Identify which users are from our company vs counterparties
- Use the office and desk information to determine the correct trading desk and office
- Use company names to identify the correct counterparty company
`)
	}

	sb.WriteString(`
IMPORTANT:
- You MUST always extract the product type. If you cannot determine the product, make your best inference from context clues.
- If user context is provided, prioritize the office and desk information from our company users.

If no clear deal information is found, do not invoke the tool.`)

	return sb.String()
}

// dealToolSchema declares every deal field with its permitted value set. The
// required list is exactly the five fields a recap cannot exist without.
func dealToolSchema() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"counter_party_company": {Type: jsonschema.String, Description: "Name of the counter party company"},
			"office":                {Type: jsonschema.String, Enum: models.Offices, Description: "Trading office"},
			"desk":                  {Type: jsonschema.String, Enum: models.Desks, Description: "Trading desk specialization"},
			"product":               {Type: jsonschema.String, Enum: models.Products, Description: "Product being traded"},
			"laycan_start":          {Type: jsonschema.String, Description: "Laycan start date (YYYY-MM-DD format)"},
			"laycan_end":            {Type: jsonschema.String, Description: "Laycan end date (YYYY-MM-DD format)"},
			"volume":                {Type: jsonschema.Number, Description: "Volume amount"},
			"volume_uom":            {Type: jsonschema.String, Enum: models.VolumeUnits, Description: "Unit of measurement for volume"},
			"deliver_method":        {Type: jsonschema.String, Enum: models.DeliveryMethods, Description: "Method of delivery"},
			"delivery_port":         {Type: jsonschema.String, Description: "Delivery port or location"},
			"vessel_name":           {Type: jsonschema.String, Description: "Vessel name (if applicable)"},
			"inco_term":             {Type: jsonschema.String, Enum: models.IncoTerms, Description: "Incoterms"},
			"inspection_agent":      {Type: jsonschema.String, Enum: models.InspectionAgents, Description: "Inspection agent"},
			"price":                 {Type: jsonschema.Number, Description: "Fixed price (if applicable)"},
			"price_basis":           {Type: jsonschema.String, Enum: models.PriceBases, Description: "Price basis reference (if applicable)"},
			"price_diff":            {Type: jsonschema.Number, Description: "Price differential (if applicable)"},
			"price_window_start":    {Type: jsonschema.String, Description: "Price window start date (YYYY-MM-DD format)"},
			"price_window_end":      {Type: jsonschema.String, Description: "Price window end date (YYYY-MM-DD format)"},
			"currency":              {Type: jsonschema.String, Enum: models.Currencies, Description: "Currency"},
			"deal_type":             {Type: jsonschema.String, Enum: models.DealTypes, Description: "Type of deal"},
			"deal_subtype":          {Type: jsonschema.String, Enum: models.DealSubtypes, Description: "Deal subtype"},
		},
		Required: []string{"counter_party_company", "office", "desk", "product", "volume"},
	}
}

// dealArguments mirrors the tool schema. Dates arrive as strings and numbers
// as pointers so missing values are distinguishable from zero.
type dealArguments struct {
	CounterPartyCompany string   `json:"counter_party_company"`
	Office              string   `json:"office"`
	Desk                string   `json:"desk"`
	Product             string   `json:"product"`
	LaycanStart         string   `json:"laycan_start"`
	LaycanEnd           string   `json:"laycan_end"`
	Volume              *float64 `json:"volume"`
	VolumeUOM           string   `json:"volume_uom"`
	DeliverMethod       string   `json:"deliver_method"`
	DeliveryPort        string   `json:"delivery_port"`
	VesselName          string   `json:"vessel_name"`
	IncoTerm            string   `json:"inco_term"`
	InspectionAgent     string   `json:"inspection_agent"`
	Price               *float64 `json:"price"`
	PriceBasis          string   `json:"price_basis"`
	PriceDiff           *float64 `json:"price_diff"`
	PriceWindowStart    string   `json:"price_window_start"`
	PriceWindowEnd      string   `json:"price_window_end"`
	Currency            string   `json:"currency"`
	DealType            string   `json:"deal_type"`
	DealSubtype         string   `json:"deal_subtype"`
}

// parseDealArguments validates the tool payload on receipt and converts it
// to a typed partial deal. Malformed payloads are extraction failures, never
// coerced into a nil "no deal" result.
func parseDealArguments(raw string) (*models.Deal, error) {
	var args dealArguments
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, &ValidationError{Tool: extractionToolName, Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}

	missing := make([]string, 0, 5)
	if args.CounterPartyCompany == "" {
		missing = append(missing, "counter_party_company")
	}
	if args.Office == "" {
		missing = append(missing, "office")
	}
	if args.Desk == "" {
		missing = append(missing, "desk")
	}
	if args.Product == "" {
		missing = append(missing, "product")
	}
	if args.Volume == nil {
		missing = append(missing, "volume")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Tool: extractionToolName, Reason: "missing required fields: " + strings.Join(missing, ", ")}
	}

	deal := &models.Deal{
		CounterPartyCompany: args.CounterPartyCompany,
		Office:              args.Office,
		Desk:                args.Desk,
		Product:             args.Product,
		LaycanStart:         parseDate(args.LaycanStart),
		LaycanEnd:           parseDate(args.LaycanEnd),
		Volume:              *args.Volume,
		VolumeUOM:           args.VolumeUOM,
		DeliverMethod:       args.DeliverMethod,
		DeliveryPort:        args.DeliveryPort,
		VesselName:          args.VesselName,
		IncoTerm:            args.IncoTerm,
		InspectionAgent:     args.InspectionAgent,
		Price:               args.Price,
		PriceBasis:          args.PriceBasis,
		PriceDiff:           args.PriceDiff,
		PriceWindowStart:    parseDate(args.PriceWindowStart),
		PriceWindowEnd:      parseDate(args.PriceWindowEnd),
		Currency:            args.Currency,
		DealType:            args.DealType,
		DealSubtype:         args.DealSubtype,
	}
	return deal, nil
}

// parseDate accepts YYYY-MM-DD or RFC3339; anything else stays unset.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	return nil
}
