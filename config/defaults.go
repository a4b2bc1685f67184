package config

// Default tables for the built-in deployment. All of these are tunable;
// the values come from one support team's content mix and should not be
// assumed to generalize.

// DefaultOrgKeywords trigger the extra documentation boost for
// organizational-lookup questions.
var DefaultOrgKeywords = []string{
	"team", "who is", "who are", "organization", "member", "role", "lead", "manager",
}

// DefaultAcronyms is the static acronym expansion table used by the query
// optimizer's deterministic fallback.
var DefaultAcronyms = map[string]string{
	"CLM": "Closed Loop Marketing CLM presentation",
	"AE":  "Approved Email AE RTE",
	"ME":  "Mass Email ME HQ Email",
	"MLR": "Medical Legal Regulatory MLR review",
}

// DefaultSynonyms is the static synonym table used by the query optimizer's
// deterministic fallback.
var DefaultSynonyms = map[string][]string{
	"sync":         {"synchronization", "syncing", "integration"},
	"presentation": {"deck", "slides", "CLM presentation"},
	"email":        {"approved email", "AE", "RTE", "mass email", "HQ email"},
	"material":     {"MLR", "asset", "document", "promotional material"},
	"content":      {"asset", "material", "document"},
	"vault":        {"Veeva Vault", "PromoMats"},
	"error":        {"issue", "problem", "bug", "failure"},
	"config":       {"configuration", "settings", "setup"},
}

// DefaultDomainKnowledge is the static platform primer injected into every
// generation prompt so answers stay consistent with how the product
// actually works.
const DefaultDomainKnowledge = `SHAMAN PLATFORM OVERVIEW:
Shaman is a guided self-service content authoring platform for the
pharmaceutical industry: local brand and digital teams create, localize and
update approved multichannel marketing and medical content themselves,
inside pre-approved guardrails (design templates, locked elements, brand
design system, content cards, references), with automated handoff to Veeva
PromoMats for MLR review and approval.

SHAMAN BUILDERS:
- AE (Approved Email Builder): Veeva Approved Emails for compliant HCP communication
- ME (Marketing Email Builder): non-MLR/pre-MLR emails, typically exported to SFMC (also "Mass Email" or "HQ Email")
- CLM (CLM Builder): assembles interactive HTML CLM presentations for Veeva CRM
- SC (Slide Builder): create/edit slides from templates or imported PDF, used in CLM Builder
- VA (Visual Asset Builder): images, banners, graphics, print PDFs
- WEB (Landing Page Builder): HTML landing pages, similar to the email builders
- CC (Smart Content Cards): pre-approved modular components reused across builders

ACRONYM REFERENCE:
- AE = Approved Email = RTE (Rep Triggered Email)
- ME = Mass Email = HQ Email = Marketing Email
- CLM = Closed Loop Marketing (sales presentations)
- MLR = Medical, Legal, Regulatory review
- CC = Smart Content Cards
- SFMC = Salesforce Marketing Cloud

INTERNAL CONTEXT:
- ConfigOps = internal administrators who handle configuration changes
- Superadmin = Shaman's backend admin system for ConfigOps and Product
- OPS board = Jira board for ConfigOps tickets
- When something requires admin/backend changes, guide users to create a ticket for ConfigOps on the OPS board

ACCOUNT AND FEATURE MODEL:
- Each account is logically isolated; accounts are created per country or per country plus therapeutic area
- Shaman has a single code base: all functionality is feature-flag driven, configured per account
- Account-level features apply to the ENTIRE account; you cannot have different settings for AE vs ME on the same account
- If a customer needs different behavior per builder, they need separate accounts or a product enhancement

KEY REASONING RULES:
1. Not all builders are equal: ME, AE and CLM have different purposes, governance and maturity
2. MLR review only applies where enabled, usually AE, ME and CLM or slides
3. Export targets differ: AE/CLM go to Veeva, ME goes to SFMC, WEB/VA/CC export as ZIP/HTML/PDF
4. Content is modular, not flat (content cards are reused across builders)
5. Approval and creation are different workflows
6. Feature availability is account-specific and often builder-scoped`

// DefaultConfig returns the baseline configuration. Callers overlay YAML on
// top of it via LoadConfig.
func DefaultConfig() *Config {
	return &Config{
		Assistant: AssistantConfig{
			ConfidenceThreshold: 0.8,
			BugReportURL:        "https://jira.example.com/create",
			EnhancementURL:      "https://productboard.example.com",
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o",
			Temperature: 0.5,
			MaxTokens:   2048,
		},
		Embedding: EmbeddingConfig{
			Provider:   "openai",
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
		},
		VectorDB: VectorDBConfig{
			Provider:         "memory",
			ContentMaxLength: 8192,
		},
		Cache: CacheConfig{
			TTLSeconds: 3600,
			MaxEntries: 512,
		},
		Memory: MemoryConfig{
			Store:       "memory",
			LastNRounds: 3,
			MaxRounds:   10,
			TTLSeconds:  3600,
		},
		Retrieval: RetrievalConfig{
			NResults:     10,
			PerSourceMin: 3,
			ScopeBoost:   0.5,
			Fusion:       FusionConfig{Strategy: "first_wins"},
			Sources: []SourceConfig{
				{Name: "slack", Collection: "slack_messages"},
				{Name: "helpcenter", Collection: "helpcenter_articles"},
				{Name: "intercom", Collection: "intercom_conversations"},
				{
					Name:             "confluence",
					Collection:       "confluence_pages",
					BudgetMultiplier: 3,
					Boost: BoostRule{
						Flat:         0.08,
						KeywordBoost: 0.12,
						Keywords:     DefaultOrgKeywords,
					},
				},
				{Name: "video", Collection: "video_transcripts"},
			},
		},
		Ingest: IngestConfig{
			BatchSize: 100,
			Splitter: SplitterConfig{
				Type:      "character",
				ChunkSize: 1000,
				Overlap:   200,
			},
		},
		Classifier: ClassifierConfig{
			Provider:  "llm",
			TimeoutMS: 10000,
		},
		Optimizer: OptimizerConfig{
			MaxVariants: 4,
			Acronyms:    DefaultAcronyms,
			Synonyms:    DefaultSynonyms,
		},
		Answer: AnswerConfig{
			ExcerptChars:       1500,
			MaxSources:         5,
			LowConfidenceBelow: 0.5,
			DomainKnowledge:    DefaultDomainKnowledge,
		},
		Router: RouterConfig{
			Rules: DefaultRouterRules(),
		},
		Customers: []CustomerConfig{
			{Key: "takeda", Name: "Takeda", Channels: []string{"C038ET6BRNH"}, ChannelNames: []string{"takeda"}, Collection: "customer_takeda"},
			{Key: "novartis", Name: "Novartis", Channels: []string{"C07BKGVMSTZ"}, ChannelNames: []string{"novartis"}, Collection: "customer_novartis"},
			{Key: "almirall", Name: "Almirall", Channels: []string{"C02G3TMJU7R"}, ChannelNames: []string{"almirall"}, Collection: "customer_almirall"},
		},
	}
}

// DefaultRouterRules encodes the stock routing policy: greetings always
// short-circuit, confident bug/enhancement classifications get the canned
// escalation response, everything else goes through retrieval.
func DefaultRouterRules() []RouterRule {
	return []RouterRule{
		{Intent: "greeting", MinConfidence: 0, Action: "greeting"},
		{Intent: "bug", MinConfidence: 0.8, Action: "canned_bug"},
		{Intent: "enhancement", MinConfidence: 0.8, Action: "canned_enhancement"},
		{Intent: "feature_request", MinConfidence: 0.8, Action: "canned_enhancement"},
	}
}
