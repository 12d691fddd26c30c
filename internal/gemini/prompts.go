package gemini

import (
	"fmt"
	"strings"
)

// Prompt templates for each generation strategy. All article-producing
// prompts share the same hypertext conventions: salient terms wrapped in
// [[double brackets]] become navigable links, and an optional
// [DIAGRAM: description] marker requests an inline illustration.

func articleSystem(language string) string {
	return fmt.Sprintf(`You are the engine of an infinite encyclopedia.
Write clear, factual, well-structured articles in Markdown.
Wrap the most important related terms and concepts in [[double brackets]] so the reader can navigate to them; aim for 5 to 15 such links per article.
Where a visual would genuinely help, insert a single line of the form [DIAGRAM: short description of the image] on its own line.
Respond entirely in %s.`, language)
}

func definitionPrompt(topic string, section int) string {
	if section <= 0 {
		return fmt.Sprintf(`Write an encyclopedia article about "%s".
Start with a one-paragraph definition, then cover origins, how it works, significance, and related ideas.`, topic)
	}
	return fmt.Sprintf(`Continue the encyclopedia article about "%s" with part %d.
Go deeper: advanced aspects, history, controversies, or applications not covered in earlier parts. Do not repeat the introduction.`, topic, section+1)
}

func searchPrompt(query string) string {
	return fmt.Sprintf(`Answer the following using current web search results. Be direct and cite-worthy; summarize the consensus and note disagreement where it exists.

Query: %s`, query)
}

func videoPrompt() string {
	return `Summarize this video as an article: what it covers, its key points in order, and any notable claims or demonstrations. Include timestamps for the major segments if you can identify them.`
}

func webResourcePrompt(url, title, pageText string, section int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following is the readable text of %s", url)
	if title != "" {
		fmt.Fprintf(&b, " (%q)", title)
	}
	b.WriteString(".\n\n")
	if section <= 0 {
		b.WriteString("Present section 1 of this page as a readable article: the opening portion, faithfully rendered, lightly cleaned up.")
	} else {
		fmt.Fprintf(&b, "Present section %d of this page as a readable article, continuing where section %d ended. If the page has no further content, say so briefly.", section+1, section)
	}
	b.WriteString("\n\n--- PAGE TEXT ---\n")
	b.WriteString(pageText)
	return b.String()
}

func documentPrompt(name, text, query string) string {
	var b strings.Builder
	if text != "" {
		fmt.Fprintf(&b, "Document %q:\n\n%s\n\n---\n\n", name, text)
	} else if name != "" {
		fmt.Fprintf(&b, "The attached file is %q.\n\n", name)
	}
	if strings.TrimSpace(query) == "" {
		b.WriteString("Summarize this document: its purpose, structure, and key points.")
	} else {
		fmt.Fprintf(&b, "Answer based on the document above: %s", query)
	}
	return b.String()
}

func imagePrompt(query string) string {
	if strings.TrimSpace(query) == "" {
		return "Describe this image in detail: subject, composition, any text it contains, and anything notable or unusual."
	}
	return fmt.Sprintf("Answer based on the attached image: %s", query)
}

func translationPrompt(text, language string) string {
	return fmt.Sprintf(`Translate the following into %s.
Preserve all Markdown structure, [[bracketed links]] and [DIAGRAM: ...] markers exactly as they appear; translate only the prose.
Output the translation and nothing else.

%s`, language, text)
}

func diagramPrompt(prompt string) string {
	return fmt.Sprintf("A clean, minimal technical illustration for an encyclopedia article: %s. Flat colors, no photographic realism, no text labels unless essential.", prompt)
}
