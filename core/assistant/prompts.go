package assistant

import (
	"fmt"
	"strings"

	"github.com/pcacademy/backend/services/llm"
)

const componentQuerySystem = `You are a helpful assistant for students learning about PC building. ` +
	`Answer questions regarding PC components, compatibility, or troubleshooting ` +
	`clearly and accurately, at a level suitable for beginners.`

var componentQuerySchema = &llmsvc.Schema{
	Name:        "component_answer",
	Description: "Answer to a student question about PC components",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer": map[string]any{
				"type":        "string",
				"description": "The answer to the student query.",
			},
		},
		"required": []any{"answer"},
	},
}

const configAnalyzerSystem = `You are an expert at analyzing PC hardware configurations.

Instructions:
1. First, decide whether the user's text is related to PC components, PC configurations or related technology.
   - If it is not, set 'isPcRelated' to false and put a polite message in the 'analysis' field, for example: "Sorry, I mainly help with analyzing PC configurations. Your input does not seem related. Please try providing your list of PC components or a related question."
   - If it is, set 'isPcRelated' to true and continue with the analysis below.
2. If 'isPcRelated' is true, analyze the configuration thoroughly:
   - Check for potential compatibility issues between components (e.g. CPU socket vs motherboard, RAM type vs motherboard, PSU wattage vs component power draw).
   - Identify potential performance bottlenecks (e.g. a high-end GPU paired with a low-end CPU, or insufficient memory for demanding workloads).
   - Where applicable, suggest improvements or alternative components, considering price-to-performance. For example, if the user picked a motherboard that is overkill for a locked CPU, suggest a better fit.
   - If the configuration is well balanced, say so.
   - Keep the analysis clear, concise and easy to follow. Use bullet points or numbered lists for suggestions where it helps.`

func configAnalyzerUser(config string) string {
	return fmt.Sprintf("The user's input:\n```\n%s\n```\n\nBegin your analysis:", config)
}

var configAnalysisSchema = &llmsvc.Schema{
	Name:        "config_analysis",
	Description: "Analysis of a PC configuration",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"isPcRelated": map[string]any{
				"type":        "boolean",
				"description": "Whether the input text is related to PC components or configurations.",
			},
			"analysis": map[string]any{
				"type":        "string",
				"description": "The analysis of the PC configuration, covering compatibility checks, bottleneck identification and suggested improvements. A polite message if the input is unrelated.",
			},
		},
		"required": []any{"isPcRelated", "analysis"},
	},
}

const quizExplanationSystem = `You are a PC building expert and educator. ` +
	`Given a multiple-choice question, provide a clear and easy to understand explanation ` +
	`of why the correct answer is correct. Where it helps, briefly note why the other ` +
	`options are incorrect. The explanation should help a learner understand the underlying concept.`

func quizExplanationUser(questionText string, options []QuizOption, correctOptionID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nOptions:\n", questionText)
	for _, opt := range options {
		fmt.Fprintf(&b, "- %s (ID: %s)\n", opt.Text, opt.ID)
	}
	fmt.Fprintf(&b, "\nThe ID of the correct option is: %s\n\nExplain why the option with ID %s is correct.", correctOptionID, correctOptionID)
	return b.String()
}

var quizExplanationSchema = &llmsvc.Schema{
	Name:        "quiz_explanation",
	Description: "Explanation of a quiz question's correct answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "A detailed explanation of why the correct answer is correct.",
			},
		},
		"required": []any{"explanation"},
	},
}
