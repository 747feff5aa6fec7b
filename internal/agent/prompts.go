package agent

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/elsayed85/quick-rag/internal/domain"
)

const routePrompt = `You are the router of a question answering assistant for students backed by a library of school books.

Decide whether the question below needs a search of the books, or can be answered directly.
Answer DIRECT only for greetings, small talk, or questions about the assistant itself.
Answer RETRIEVE for everything that asks about a subject, a concept, a formula or a fact.

Question: %s

Reply with exactly one word: RETRIEVE or DIRECT.`

const gradePrompt = `You are a grader assessing relevance of retrieved documents to a student's question.

Here are the retrieved documents:
%s

Here is the student's question: %s

If the documents contain information that could help answer the student's question (keywords, concepts, formulas, explanations related to the topic), grade them as relevant.

Give a binary score 'yes' or 'no' to indicate whether the documents are relevant to the question. Reply with the single word only.`

const rewritePrompt = `You are helping to improve a student's question for better search results.

The previous search didn't return relevant results. Rewrite the question to be more specific or use different terminology that might be found in school textbooks.

Original question: %s
Last search query: %s
%s
Reply with the rewritten search query only, on a single line, keeping it focused on the educational topic.`

const groundedPrompt = `You are a helpful educational assistant for students. Use the following information from school books to answer the student's question.

Instructions:
- Provide a clear, educational explanation suitable for students
- If the context includes formulas or equations, explain them step by step
- Cite the source file and page of the information you use
- If you're not sure about something, say so
- Keep the answer focused and concise

Question: %s

Context from books:
%s

Answer:`

const uncertainPrompt = `You are a helpful educational assistant for students. A search of the school books did not find material that clearly answers the student's question. The closest passages found are below.

Instructions:
- Start by saying plainly that the books did not contain a clear answer
- Then give your best general explanation, marking anything you are unsure about
- Use the passages only where they actually help
- Do not refuse to answer

Question: %s

Closest passages:
%s

Answer:`

const directPrompt = `You are a friendly educational assistant for students. You help them learn using their school books.

Respond to the student's message directly from general knowledge. Keep it short and friendly.

Message: %s

Answer:`

// fallbackAnswer is returned when the model refuses to produce the final answer.
const fallbackAnswer = "I'm sorry, I couldn't find enough reliable information to answer that question. Please try rephrasing it or asking about a topic covered in your books."

const (
	passageSeparator = "\n\n---\n\n"
	rewriteContextN  = 2
	rewriteSnippet   = 160
)

func buildRoutePrompt(question string) string {
	return fmt.Sprintf(routePrompt, question)
}

func buildGradePrompt(query string, passages []domain.Passage) string {
	return fmt.Sprintf(gradePrompt, formatPassages(passages), query)
}

func buildRewritePrompt(s *domain.SessionState) string {
	var missed strings.Builder
	n := len(s.Passages)
	if n > rewriteContextN {
		n = rewriteContextN
	}
	if n > 0 {
		missed.WriteString("\nThe last search returned these passages, which did not help:\n")
		for _, p := range s.Passages[:n] {
			fmt.Fprintf(&missed, "- %s\n", truncate(p.Text, rewriteSnippet))
		}
	}
	return fmt.Sprintf(rewritePrompt, s.OriginalQuestion, s.CurrentQuery, missed.String())
}

// buildGeneratePrompt always asks about the original question, never a rewrite.
func buildGeneratePrompt(s *domain.SessionState) string {
	switch {
	case !s.Retrieved():
		return fmt.Sprintf(directPrompt, s.OriginalQuestion)
	case s.Verdict == domain.VerdictRelevant:
		return fmt.Sprintf(groundedPrompt, s.OriginalQuestion, formatPassages(s.Passages))
	default:
		context := formatPassages(s.Passages)
		if context == "" {
			context = "(none)"
		}
		return fmt.Sprintf(uncertainPrompt, s.OriginalQuestion, context)
	}
}

func formatPassages(passages []domain.Passage) string {
	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		parts = append(parts, fmt.Sprintf("[Source: %s, Page: %d]\n%s", p.SourceFile, p.Page, p.Text))
	}
	return strings.Join(parts, passageSeparator)
}

// parseOutcome is the result of reading a label out of free-form model output.
type parseOutcome int

const (
	outcomeUnknown parseOutcome = iota
	outcomeA
	outcomeB
)

var (
	routeRetrieveWords = []string{"retrieve", "retrieval", "search"}
	routeDirectWords   = []string{"direct", "directly"}
	gradeYesWords      = []string{"yes", "relevant"}
	gradeNoWords       = []string{"no", "not", "irrelevant"}
)

// parseLabel decides between two label sets. The first word wins when it is
// a label; otherwise the output must mention labels from one set only.
func parseLabel(out string, a, b []string) parseOutcome {
	words := strings.FieldsFunc(strings.ToLower(out), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(words) == 0 {
		return outcomeUnknown
	}
	switch {
	case contains(a, words[0]):
		return outcomeA
	case contains(b, words[0]):
		return outcomeB
	}
	var sawA, sawB bool
	for _, w := range words {
		sawA = sawA || contains(a, w)
		sawB = sawB || contains(b, w)
	}
	switch {
	case sawA && !sawB:
		return outcomeA
	case sawB && !sawA:
		return outcomeB
	default:
		return outcomeUnknown
	}
}

// parseRewrite extracts a single-line query from the rewriter output.
func parseRewrite(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if i := strings.Index(line, ":"); i >= 0 && i < 32 && strings.Contains(strings.ToLower(line[:i]), "question") {
			line = strings.TrimSpace(line[i+1:])
		}
		line = strings.Trim(line, "\"'`* ")
		if line != "" {
			return line
		}
	}
	return ""
}

func contains(set []string, w string) bool {
	for _, s := range set {
		if s == w {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
