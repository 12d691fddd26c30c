package i18n

// loadEnglishMessages loads all English translations.
func loadEnglishMessages() {
	messages[LangEN] = map[string]string{
		// Common
		"app.name":        "Infinite Wiki",
		"app.description": "An AI-generated encyclopedia in your terminal",
		"app.version":     "Infinite Wiki v%s",

		// Welcome and Exit
		"welcome":      "Welcome to Infinite Wiki v%s",
		"welcome.help": "Type a topic to explore, /help for commands, Ctrl+D or /quit to exit",
		"goodbye":      "Goodbye!",

		// Tabs
		"tab.new":      "New Tab",
		"tab.opened":   "Opened tab %d",
		"tab.closed":   "Closed tab",
		"tab.default":  "New Tab",
		"tab.loading":  "Generating...",
		"tab.sources":  "Sources",
		"tab.elapsed":  "generated in %s",
		"tab.page":     "Page %d/%d",
		"tab.section":  "Section %d",
		"tab.language": "Language: %s",

		// Commands
		"cmd.prompt": "Topic> ",

		// Help messages
		"help.title":   "Available Commands:",
		"help.open":    "/open <path>       Attach a document or image",
		"help.url":     "/url <link>        Read a web page or YouTube video",
		"help.search":  "/search            Toggle grounded web search",
		"help.lang":    "/lang <language>   Set output language",
		"help.random":  "/random            Explore a random topic",
		"help.back":    "/back, /forward    Navigate history",
		"help.pages":   "/next, /prev       Turn document pages",
		"help.section": "/section +|-       Move between web sections",
		"help.reload":  "/reload            Regenerate current topic",
		"help.tab":     "/tab, /close       Open or close a tab",
		"help.quit":    "/quit              Exit",

		// Modes
		"mode.search.on":  "Web search enabled",
		"mode.search.off": "Web search disabled",
		"mode.document":   "Reading: %s",

		// Language
		"lang.changed":     "Output language changed to: %s",
		"lang.unsupported": "Unsupported language: %s",
		"lang.available":   "Available languages: %s",

		// Errors
		"error.config":     "Error loading config: %v",
		"error.generate":   "Error generating content: %v",
		"error.attach":     "Error attaching file: %v",
		"error.navigation": "Nothing to navigate to",
		"error.canceled":   "(Canceled)",
		"error.timeout":    "Generation timeout. Try a narrower topic.",
	}
}
