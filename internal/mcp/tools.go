package mcp

import "github.com/mark3labs/mcp-go/mcp"

const fieldHelp = "Content field: wire key (TITULO_PRINCIPAL) or name (main_title, alt_titles, description, hashtags, script, key_points, search_tags, seo_keywords, thumbnail_text, cta_variants)"

var generateToolDef = mcp.NewTool("content_generate",
	mcp.WithDescription("Generate a new short-video content bundle (titles, description, hashtags, script, key points) and start an editing session. Spends one NEW generation from the plan quota."),
	mcp.WithString("platform", mcp.Required(), mcp.Description("YouTube, TikTok or Instagram Reels"), mcp.Enum("YouTube", "TikTok", "Instagram Reels")),
	mcp.WithString("topic", mcp.Required(), mcp.Description("Main topic of the video")),
	mcp.WithString("keywords", mcp.Description("Comma-separated keywords")),
	mcp.WithString("tone", mcp.Description("Tone of voice"),
		mcp.Enum("informativo-entusiasmado", "casual-amigavel", "profissional-autoritativo", "divertido-energetico", "viral-provocativo")),
	mcp.WithString("duration", mcp.Description("Estimated duration, e.g. 30s, 60 segundos, 5 minutos")),
	mcp.WithString("language", mcp.Description("Language tag (default from config, pt-BR)")),
	mcp.WithString("image_base64", mcp.Description("Optional reference image, base64 encoded")),
	mcp.WithString("image_mime", mcp.Description("MIME type of the image (detected when omitted)")),
)

var variationToolDef = mcp.NewTool("content_variation",
	mcp.WithDescription("Regenerate the whole bundle of a session as a different variation. The result becomes the new baseline."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session ID")),
	mcp.WithString("instruction", mcp.Description("Optional direction for the variation")),
)

var refineToolDef = mcp.NewTool("content_refine",
	mcp.WithDescription("Rewrite one field of a session following an instruction. Other fields are untouched; the previous value goes to the field history."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session ID")),
	mcp.WithString("field", mcp.Required(), mcp.Description(fieldHelp)),
	mcp.WithString("instruction", mcp.Required(), mcp.Description("How to change the field")),
)

var refineBatchToolDef = mcp.NewTool("content_refine_batch",
	mcp.WithDescription("Rewrite several fields of a session with one model call."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session ID")),
	mcp.WithArray("fields", mcp.Required(), mcp.Description(fieldHelp), mcp.WithStringItems()),
	mcp.WithString("instruction", mcp.Required(), mcp.Description("How to change the fields")),
)

var restoreToolDef = mcp.NewTool("content_restore",
	mcp.WithDescription("Put a previous value of a field back, picked by its index in session_history."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session ID")),
	mcp.WithString("field", mcp.Required(), mcp.Description(fieldHelp)),
	mcp.WithNumber("index", mcp.Required(), mcp.Description("History index, 0 is the oldest entry")),
)

var lintToolDef = mcp.NewTool("content_lint",
	mcp.WithDescription("Check a session's current content against the platform rules."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session ID")),
)

var exportToolDef = mcp.NewTool("content_export",
	mcp.WithDescription("Write a session's current content to a JSON or CSV file in ~/.reelcraft/exports or an allowed path."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session ID")),
	mcp.WithString("format", mcp.Description("json (default) or csv"), mcp.Enum("json", "csv")),
	mcp.WithArray("fields", mcp.Description("Fields to export (default: every field with a value)"), mcp.WithStringItems()),
	mcp.WithString("path", mcp.Description("Output path (default: ~/.reelcraft/exports/<topic>-<timestamp>.<ext>)")),
)

var fetchToolDef = mcp.NewTool("session_fetch",
	mcp.WithDescription("Fetch a session: form, current and baseline content, modified fields, history and lint report."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session ID")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted sessions")),
)

var listToolDef = mcp.NewTool("session_list",
	mcp.WithDescription("List sessions, most recently updated first."),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Page offset")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted sessions")),
)

var historyToolDef = mcp.NewTool("session_history",
	mcp.WithDescription("Show the previous values of a field, oldest first, with its current and baseline values."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session ID")),
	mcp.WithString("field", mcp.Required(), mcp.Description(fieldHelp)),
)

var deleteToolDef = mcp.NewTool("session_delete",
	mcp.WithDescription("Soft-delete a session. Its generations still count toward the quota."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session ID")),
)

var importToolDef = mcp.NewTool("session_import",
	mcp.WithDescription("Start a session from a full JSON export. Spends no quota."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path to a .json export")),
	mcp.WithString("platform", mcp.Required(), mcp.Description("YouTube, TikTok or Instagram Reels")),
	mcp.WithString("topic", mcp.Description("Topic (default: the imported main title)")),
	mcp.WithString("keywords", mcp.Description("Comma-separated keywords")),
	mcp.WithString("tone", mcp.Description("Tone of voice")),
	mcp.WithString("duration", mcp.Description("Estimated duration")),
	mcp.WithString("language", mcp.Description("Language tag")),
)

var generationListToolDef = mcp.NewTool("generation_list",
	mcp.WithDescription("List the generation log, newest first."),
	mcp.WithString("session_id", mcp.Description("Only generations of this session")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Page offset")),
)

var usageToolDef = mcp.NewTool("generation_usage",
	mcp.WithDescription("Report the plan tier, NEW generations used in the current window and whether refinement is allowed."),
)
