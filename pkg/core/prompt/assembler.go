package prompt

import "fmt"

// Assembler renders the system prompt and the user prompt for a given
// analysis bucket deterministically: no network calls, no hidden state,
// only template substitution over the caller-supplied variables.
type Assembler struct {
	registry *Registry
}

// NewAssembler wraps a prompt Registry already populated via
// LoadFromDirectory.
func NewAssembler(r *Registry) *Assembler {
	return &Assembler{registry: r}
}

// SystemPrompt renders the shared industry-aware system prompt.
func (a *Assembler) SystemPrompt(industryName, industryDescription string) (string, error) {
	pt, err := a.registry.GetPrompt(SystemPromptID)
	if err != nil {
		return "", fmt.Errorf("assembler: system prompt: %w", err)
	}
	return renderTemplateString(pt.SystemPrompt, map[string]interface{}{
		"IndustryName":        industryName,
		"IndustryDescription": industryDescription,
	})
}

// BucketPrompt renders the user prompt for one analysis bucket
// ("core", "auxiliary", "specific") given its formatted indicator block.
func (a *Assembler) BucketPrompt(bucket, companyName, reportPeriod, industryName, indicatorBlock string) (string, error) {
	pt, err := a.registry.GetPrompt(bucket)
	if err != nil {
		return "", fmt.Errorf("assembler: bucket prompt %q: %w", bucket, err)
	}
	ctx := NewContext()
	ctx.Set("CompanyName", companyName).
		Set("ReportPeriod", reportPeriod).
		Set("IndustryName", industryName).
		Set("IndicatorBlock", indicatorBlock)
	return RenderUserPrompt(pt, ctx)
}

// FinalReportPrompt renders the generate_report node's user prompt from
// the three bucket analyses plus the retrieved context.
func (a *Assembler) FinalReportPrompt(companyName, reportPeriod, core, auxiliary, specific, retrievedContext string) (string, error) {
	pt, err := a.registry.GetPrompt(BucketFinal)
	if err != nil {
		return "", fmt.Errorf("assembler: final report prompt: %w", err)
	}
	ctx := NewContext()
	ctx.Set("CompanyName", companyName).
		Set("ReportPeriod", reportPeriod).
		Set("CoreAnalysis", core).
		Set("AuxiliaryAnalysis", auxiliary).
		Set("SpecificAnalysis", specific).
		Set("RetrievedContext", retrievedContext)
	return RenderUserPrompt(pt, ctx)
}

// renderTemplateString renders a system-prompt template, which unlike
// user-prompt templates has no PromptTemplate wrapper to hang Execute off.
func renderTemplateString(tmplText string, vars map[string]interface{}) (string, error) {
	pt := &PromptTemplate{ID: "system", UserPromptTmpl: tmplText}
	ctx := &PromptExecutionContext{Variables: vars}
	return RenderUserPrompt(pt, ctx)
}
