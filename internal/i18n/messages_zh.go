package i18n

// loadChineseMessages loads all Traditional Chinese translations.
func loadChineseMessages() {
	messages[LangZhTW] = map[string]string{
		// Common
		"app.name":        "無限維基",
		"app.description": "終端機裡的 AI 百科全書",
		"app.version":     "無限維基 v%s",

		// Welcome and Exit
		"welcome":      "歡迎使用無限維基 v%s",
		"welcome.help": "輸入主題開始探索，/help 查看指令，Ctrl+D 或 /quit 離開",
		"goodbye":      "再見！",

		// Tabs
		"tab.new":      "新分頁",
		"tab.opened":   "已開啟分頁 %d",
		"tab.closed":   "已關閉分頁",
		"tab.default":  "新分頁",
		"tab.loading":  "生成中...",
		"tab.sources":  "資料來源",
		"tab.elapsed":  "生成耗時 %s",
		"tab.page":     "第 %d/%d 頁",
		"tab.section":  "第 %d 節",
		"tab.language": "語言：%s",

		// Commands
		"cmd.prompt": "主題> ",

		// Help messages
		"help.title":   "可用指令：",
		"help.open":    "/open <path>       附加文件或圖片",
		"help.url":     "/url <link>        閱讀網頁或 YouTube 影片",
		"help.search":  "/search            切換網路搜尋",
		"help.lang":    "/lang <language>   設定輸出語言",
		"help.random":  "/random            探索隨機主題",
		"help.back":    "/back, /forward    瀏覽歷史",
		"help.pages":   "/next, /prev       翻頁",
		"help.section": "/section +|-       切換網頁章節",
		"help.reload":  "/reload            重新生成目前主題",
		"help.tab":     "/tab, /close       開啟或關閉分頁",
		"help.quit":    "/quit              離開",

		// Modes
		"mode.search.on":  "已啟用網路搜尋",
		"mode.search.off": "已停用網路搜尋",
		"mode.document":   "閱讀中：%s",

		// Language
		"lang.changed":     "輸出語言已變更為：%s",
		"lang.unsupported": "不支援的語言：%s",
		"lang.available":   "可用語言：%s",

		// Errors
		"error.config":     "載入設定失敗：%v",
		"error.generate":   "生成內容失敗：%v",
		"error.attach":     "附加檔案失敗：%v",
		"error.navigation": "沒有可瀏覽的紀錄",
		"error.canceled":   "（已取消）",
		"error.timeout":    "生成逾時，請嘗試較小的主題。",
	}
}
