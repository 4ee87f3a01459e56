package services

import (
	"fmt"
	"strings"

	"careercoach/api/internal/models"
)

const QuizQuestionCount = 10

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildIndustryInsightPrompt creates prompt for an industry market report
func (pb *PromptBuilder) BuildIndustryInsightPrompt(industry string) string {
	return fmt.Sprintf(`Analyze the current state of the %s industry and provide insights in ONLY the following JSON format without any additional notes or explanations:
{
  "salaryRanges": [
    { "role": "string", "min": number, "max": number, "median": number, "location": "string" }
  ],
  "growthRate": number,
  "demandLevel": "High" | "Medium" | "Low",
  "topSkills": ["skill1", "skill2"],
  "marketOutlook": "Positive" | "Neutral" | "Negative",
  "keyTrends": ["trend1", "trend2"],
  "recommendedSkills": ["skill1", "skill2"]
}

IMPORTANT: Return ONLY the JSON. No additional text, notes, or markdown formatting.
Include at least 5 common roles for salary ranges.
Growth rate should be a percentage.
Include at least 5 skills, 5 trends and 5 recommended skills.`, industry)
}

// BuildQuizPrompt creates prompt for multiple choice interview questions
func (pb *PromptBuilder) BuildQuizPrompt(industry string, skills []string) string {
	expertise := ""
	if len(skills) > 0 {
		expertise = fmt.Sprintf(" with expertise in %s", strings.Join(skills, ", "))
	}

	return fmt.Sprintf(`Generate %d technical interview questions for a %s professional%s.

Each question should be multiple choice with 4 options.
The correctAnswer must be exactly one of the options.

Return ONLY valid JSON in the following format, no markdown, no extra explanation:

{
  "questions": [
    {
      "question": "string",
      "options": ["string", "string", "string", "string"],
      "correctAnswer": "string",
      "explanation": "string"
    }
  ]
}`, QuizQuestionCount, industry, expertise)
}

// BuildImprovementTipPrompt creates prompt for a short tip based on missed questions
func (pb *PromptBuilder) BuildImprovementTipPrompt(industry string, wrong []models.QuestionResult) string {
	parts := make([]string, 0, len(wrong))
	for _, q := range wrong {
		parts = append(parts, fmt.Sprintf("Question: %q\nCorrect Answer: %q\nUser Answer: %q",
			q.Question, q.Answer, q.UserAnswer))
	}

	return fmt.Sprintf(`The user got the following %s technical interview questions wrong:

%s

Based on these mistakes, provide a short, specific improvement tip.
Don't mention the mistakes. Focus on the topic or skill to improve.
Keep it under 2 sentences and be encouraging.`, industry, strings.Join(parts, "\n\n"))
}

// BuildResumeImprovementPrompt creates prompt for rewriting one resume section.
// resumeContext may be empty.
func (pb *PromptBuilder) BuildResumeImprovementPrompt(industry, sectionType, current, resumeContext string) string {
	var contextBlock string
	if resumeContext != "" {
		contextBlock = fmt.Sprintf("\nRelated parts of the candidate's resume:\n%s\n", resumeContext)
	}

	return fmt.Sprintf(`As an expert resume writer, improve the following %s description for a %s professional.
Make it more impactful, quantifiable, and aligned with industry standards.
Current content: %q
%s
Requirements:
1. Use action verbs
2. Include metrics and results where possible
3. Highlight relevant technical skills
4. Keep it concise but detailed
5. Focus on achievements over responsibilities
6. Use industry-specific keywords

Format the response as a single paragraph without any additional text or explanations.`,
		sectionType, industry, current, contextBlock)
}

// FormatResumeContext joins retrieved resume chunks for a prompt.
func FormatResumeContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Excerpt %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}
