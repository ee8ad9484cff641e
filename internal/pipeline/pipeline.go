// Package pipeline simulates the client-metrics pipeline that seeds a
// communication draft. The fetch fills a fixed template and attaches
// two generated spreadsheet reports.
package pipeline

import (
	"fmt"

	"github.com/solris/commhub/internal/draft"
	"github.com/solris/commhub/internal/spreadsheet"
)

// Inputs are the client parameters fed into the template.
type Inputs struct {
	Name           string
	RecipientEmail string
	CCEmail        string
	Product        string
}

// DefaultInputs returns the demo client used when no parameters are
// supplied.
func DefaultInputs() Inputs {
	return Inputs{
		Name:           "Acme Corp",
		RecipientEmail: "client@acme.com",
		CCEmail:        "manager@solis.example",
		Product:        "Solis Enterprise",
	}
}

// Generator builds drafts from pipeline results.
type Generator struct {
	sender string
}

func NewGenerator(sender string) *Generator {
	return &Generator{sender: sender}
}

const bodyTemplate = `Hello %s,

Please find attached the latest performance metrics for your %s deployment.

Key Highlights:
- Uptime: 99.99%%
- Data Usage: Increased by 15%% WoW
- Active Devices: 142

The detailed breakdown is included in the attached spreadsheets. Let us know if you have questions regarding the usage trends.

Best regards,
Solis Client Success Team
`

// Fetch runs the simulated pipeline call and returns a populated
// draft with two generated spreadsheet attachments.
func (g *Generator) Fetch(in Inputs) (*draft.Draft, error) {
	if in.Name == "" {
		in.Name = "Valued Partner"
	}
	if in.RecipientEmail == "" {
		in.RecipientEmail = "client@example.com"
	}
	if in.Product == "" {
		in.Product = "Global Connectivity"
	}

	usage, err := spreadsheet.BuildReport("usage", 8)
	if err != nil {
		return nil, fmt.Errorf("failed to build usage report: %w", err)
	}
	metrics, err := spreadsheet.BuildReport("metrics", 12)
	if err != nil {
		return nil, fmt.Errorf("failed to build metrics report: %w", err)
	}

	d := &draft.Draft{
		Sender:  g.sender,
		To:      []string{in.RecipientEmail},
		Cc:      draft.ParseAddressList(in.CCEmail),
		Subject: fmt.Sprintf("Monthly Performance Review: %s", in.Product),
		Body:    fmt.Sprintf(bodyTemplate, in.Name, in.Product),
	}
	d.AddAttachment(draft.NewAttachment("usage_summary.xlsx", usage, ""))
	d.AddAttachment(draft.NewAttachment("device_metrics.xlsx", metrics, ""))

	return d, nil
}
