// Package prompt assembles the text sent to chat backends: the assistant's
// system prompt and the user prompts for chat, discovery and refactoring.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"baselinedev/baseline"
)

// discoveryFeatureLimit caps how many features a discovery prompt lists.
const discoveryFeatureLimit = 15

// DataInfo reports where the feature data came from.
type DataInfo interface {
	UsingRealTimeData() bool
	LastFetchTime() time.Time
}

// Builder builds prompts that describe the active feature data.
type Builder struct {
	data DataInfo
}

func NewBuilder(data DataInfo) *Builder {
	return &Builder{data: data}
}

const systemPromptTemplate = `You are Baseline.dev, an expert AI assistant specialized in web platform features and browser compatibility.

Your core competencies:
- Discovering and recommending newly available web features
- Refactoring code for modern browsers
- Checking browser compatibility using official Baseline data
- Replacing outdated patterns with modern alternatives
- Helping developers adopt experimental features when appropriate
- Starting new projects with specific web features

You have access to the official web-features Baseline database via %s.
%s

The Baseline database provides:
- Feature availability status (baseline high/low, or limited availability)
- Browser support information
- Timeline of when features became widely available
- Specification links and documentation

When providing recommendations:
1. Always check Baseline status first
2. Prefer "baseline: high" features for production use
3. Clearly indicate browser support and compatibility
4. Provide both old and new code examples when refactoring
5. Explain the benefits and tradeoffs of changes
6. For experimental features, warn about limited support
7. Consider the user's target browsers

Communication style:
- Be concise and practical
- Focus on code and actionable advice
- Use markdown for code examples
- Cite Baseline status and dates when relevant
- Be honest about browser limitations

Remember: You're helping developers modernize their web projects with confidence, backed by official platform data.`

// SystemPrompt names the data source and, for fetched data, its age.
func (b *Builder) SystemPrompt() string {
	source := "local package (may be slightly outdated)"
	fetchInfo := ""

	if b.data != nil {
		if b.data.UsingRealTimeData() {
			source = "REAL-TIME API (latest from web-features repository)"
		}
		if t := b.data.LastFetchTime(); !t.IsZero() {
			fetchInfo = "Last updated: " + t.Format("2006-01-02 15:04:05 MST")
		}
	}

	return fmt.Sprintf(systemPromptTemplate, source, fetchInfo)
}

// UserContext is optional context attached to a chat message.
type UserContext struct {
	Code             string
	FileName         string
	Language         string
	TargetBrowsers   []string
	RelevantFeatures []baseline.WebFeature
}

// UserPrompt appends file, code, browser and feature context to message.
func (b *Builder) UserPrompt(message string, uc UserContext) string {
	var sb strings.Builder
	sb.WriteString(message)

	if uc.FileName != "" {
		fmt.Fprintf(&sb, "\n\n**File:** %s", uc.FileName)
	}
	if uc.Language != "" {
		fmt.Fprintf(&sb, "\n**Language:** %s", uc.Language)
	}
	if uc.Code != "" {
		fmt.Fprintf(&sb, "\n\n**Code:**\n```%s\n%s\n```", uc.Language, uc.Code)
	}
	if len(uc.TargetBrowsers) > 0 {
		fmt.Fprintf(&sb, "\n\n**Target Browsers:** %s", strings.Join(uc.TargetBrowsers, ", "))
	}

	if len(uc.RelevantFeatures) > 0 {
		sb.WriteString("\n\n**Relevant Baseline Features:**")
		for _, f := range uc.RelevantFeatures {
			fmt.Fprintf(&sb, "\n\n- **%s** (`%s`)", f.Name, f.ID)
			writeStatus(&sb, f)
			if f.Description != "" {
				fmt.Fprintf(&sb, "\n  - %s", f.Description)
			}
		}
	}

	return sb.String()
}

func writeStatus(sb *strings.Builder, f baseline.WebFeature) {
	switch f.Level() {
	case baseline.LevelHigh:
		sb.WriteString("\n  - Status: Baseline high")
		if f.Status.HighDate != "" {
			fmt.Fprintf(sb, "\n  - Available since: %s", f.Status.HighDate)
		}
	case baseline.LevelLow:
		sb.WriteString("\n  - Status: Baseline low")
		if f.Status.LowDate != "" {
			fmt.Fprintf(sb, "\n  - Available since: %s", f.Status.LowDate)
		}
	default:
		sb.WriteString("\n  - Status: Limited availability")
	}
}

// DiscoveryPrompt asks for adoption advice for recently available features.
func (b *Builder) DiscoveryPrompt(project ProjectContext, features []baseline.WebFeature) string {
	var sb strings.Builder
	sb.WriteString("Analyze this web project and suggest how to adopt newly available Baseline features.\n\n")

	sb.WriteString("**Project Context:**\n")
	if project.HasPackageJSON {
		sb.WriteString("- Has package.json (Node.js project)\n")
	}
	if len(project.Frameworks) > 0 {
		fmt.Fprintf(&sb, "- Frameworks: %s\n", strings.Join(project.Frameworks, ", "))
	}
	if project.HasHTML {
		sb.WriteString("- Contains HTML files\n")
	}
	if project.HasCSS {
		sb.WriteString("- Contains CSS files\n")
	}
	if project.HasJavaScript {
		sb.WriteString("- Contains JavaScript files\n")
	}
	if project.HasTypeScript {
		sb.WriteString("- Contains TypeScript files\n")
	}

	sb.WriteString("\n**Recently Available Baseline Features (last 12 months):**\n")
	for i, f := range features {
		if i == discoveryFeatureLimit {
			break
		}
		fmt.Fprintf(&sb, "- %s (%s) - %s\n", f.Name, f.ID, AvailableSince(f))
	}

	sb.WriteString("\n**Task:**\n")
	sb.WriteString("1. Identify the top 3-5 most relevant features for this project\n")
	sb.WriteString("2. Explain why each feature would be beneficial\n")
	sb.WriteString("3. Provide concrete implementation examples\n")
	sb.WriteString("4. Note any prerequisites or considerations\n")
	sb.WriteString("5. Mention browser support status\n")
	sb.WriteString("\nBe specific and actionable. Focus on features that would genuinely improve this project.")

	return sb.String()
}

const refactorPromptTemplate = `Analyze this code and suggest modernizations based on Baseline web features.

**File:** %s
**Language:** %s

**Code to Refactor:**
` + "```" + `%s
%s
` + "```" + `

**Task:**
1. Identify outdated patterns or APIs
2. Check which modern alternatives are now Baseline
3. Suggest specific refactorings with code examples
4. Explain the benefits (performance, readability, maintainability)
5. Provide browser support information
6. Note any breaking changes or migration steps

Focus on:
- Replacing polyfills with native features
- Using modern CSS features (Grid, Container Queries, etc.)
- Adopting new JavaScript APIs
- Improving performance with modern features

Provide before/after code examples for each suggestion.`

func (b *Builder) RefactorPrompt(code, fileName, language string) string {
	return fmt.Sprintf(refactorPromptTemplate, fileName, language, language, code)
}

// AvailableSince is the high date, falling back to the low date.
func AvailableSince(f baseline.WebFeature) string {
	if f.Status == nil {
		return ""
	}
	if f.Status.HighDate != "" {
		return f.Status.HighDate
	}
	return f.Status.LowDate
}

// StatusText is a one-line availability summary for display.
func StatusText(f baseline.WebFeature) string {
	switch f.Level() {
	case baseline.LevelHigh:
		return "Widely available"
	case baseline.LevelLow:
		return "Recently available"
	default:
		return "Limited availability"
	}
}
