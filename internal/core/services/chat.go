package services

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/axchat/internal/core/domain"
	"github.com/custodia-labs/axchat/internal/core/ports/driven"
	"github.com/custodia-labs/axchat/internal/core/ports/driving"
	"github.com/custodia-labs/axchat/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// Sanitisation limits for incoming messages and history.
const (
	maxMessageLen  = 600
	maxTurnLen     = 240
	maxHistoryCap  = 12
	maxHistoryUsed = 8

	// Messages longer than this are treated as overview requests.
	searchLengthThreshold = 180

	// At most this many model names are disclosed in errors and status.
	maxAvailableModels = 12

	// Probability of appending a cosmetic heartbeat line.
	heartbeatChance = 0.07
)

// Generation parameters for grounded answers.
var answerOptions = driven.GenerateOptions{
	MaxTokens:   320,
	Temperature: 0.1,
	TopP:        0.9,
}

// Fixed reply texts. The corpus and its audience are Russian-language;
// canned replies follow suit.
const (
	introText = "Я — ECHO AXIOM (1/1000), модуль ответов по базе. Режимы: QA (ответ по базе) и SEARCH (список источников). Задай вопрос или набери /help."

	searchAckText = "Поиск завершен. См. список источников."

	noDataText = "В базе не найдено данных по запросу. Попробуй уточнить ключевые слова."

	broadQuestionText = "Вопрос слишком широкий. Уточни: какой раздел, термин или событие интересует?"

	ruFallbackText = "Ответ должен быть на русском языке. Попробуй переформулировать вопрос на RU."

	nextStepText = "Следующий шаг: уточни вопрос или переключись в режим SEARCH."
)

// heartbeatLines are cosmetic flavor sentences, appended rarely.
var heartbeatLines = []string{
	"…сигнал 1/1000 стабилен.",
	"…эхо-контур активен.",
	"…фоновые помехи в пределах нормы.",
}

// ChatService is the per-message pipeline: sanitize, command dispatch,
// small-talk and broad-question guards, mode resolution, multi-candidate
// retrieval, scope-filtered assembly, generation and post-processing.
type ChatService struct {
	index   driven.RetrievalIndex
	gen     driven.Generator
	prompts driven.PromptStore
	watcher driven.CorpusWatcher

	topK      int
	heartbeat bool
	rng       func() float64
}

// ChatOption configures the chat service.
type ChatOption func(*ChatService)

// WithTopK sets the retrieval result limit.
func WithTopK(k int) ChatOption {
	return func(s *ChatService) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithHeartbeat enables the cosmetic flavor line.
func WithHeartbeat(enabled bool) ChatOption {
	return func(s *ChatService) {
		s.heartbeat = enabled
	}
}

// WithWatcher attaches a corpus watcher so status output can flag a
// stale index.
func WithWatcher(w driven.CorpusWatcher) ChatOption {
	return func(s *ChatService) {
		s.watcher = w
	}
}

// WithRand replaces the random source used for heartbeat lines.
func WithRand(rng func() float64) ChatOption {
	return func(s *ChatService) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// NewChatService creates the query orchestrator.
func NewChatService(
	index driven.RetrievalIndex,
	gen driven.Generator,
	prompts driven.PromptStore,
	opts ...ChatOption,
) *ChatService {
	s := &ChatService{
		index:   index,
		gen:     gen,
		prompts: prompts,
		topK:    4,
		rng:     rand.Float64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query runs the per-message pipeline under the caller's scope. Stages
// run in a fixed order; each may short-circuit with a response.
func (s *ChatService) Query(ctx context.Context, scope domain.AccessScope, req domain.ChatRequest) (*domain.ChatResponse, error) {
	start := time.Now()

	message := sanitizeText(req.Message, maxMessageLen)
	if message == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidMessage)
	}
	history := sanitizeHistory(req.History)

	finish := func(answer string, refs []domain.Reference, mode domain.Mode, query string) *domain.ChatResponse {
		return &domain.ChatResponse{
			AnswerMarkdown: answer,
			Refs:           domain.MapReferencesForScope(refs, scope),
			Notes: domain.ChatNotes{
				LatencyMS:      time.Since(start).Milliseconds(),
				Model:          s.gen.ModelName(),
				Scope:          scope.Role,
				Mode:           mode,
				RetrievalQuery: query,
			},
		}
	}

	if reply, ok := s.dispatchCommand(ctx, scope, message); ok {
		return finish(reply, nil, req.Mode, ""), nil
	}

	if isSmallTalk(message) {
		return finish(introText, nil, req.Mode, ""), nil
	}

	mode := resolveMode(req.Mode, message)

	if mode == domain.ModeQA && isBroadQuestion(message) {
		return finish(broadQuestionText, nil, mode, ""), nil
	}

	refs, query := s.retrieve(ctx, scope, message, history)

	if mode == domain.ModeSearch {
		return finish(searchAckText, refs, mode, query), nil
	}

	if len(refs) == 0 {
		nearby, fallbackQuery := s.retrieveNarrow(ctx, scope, message)
		answer := noDataText + "\n\n" + noDataOffers(scope)
		if fallbackQuery != "" {
			query = fallbackQuery
		}
		return finish(answer, nearby, mode, query), nil
	}

	answer, err := s.generate(ctx, scope, message, history, refs)
	if err != nil {
		return nil, err
	}
	answer = s.postProcess(answer)

	return finish(answer, refs, mode, query), nil
}

// Search performs a bare scoped retrieval without generation.
func (s *ChatService) Search(ctx context.Context, scope domain.AccessScope, query string) ([]domain.Reference, error) {
	q := sanitizeText(query, maxMessageLen)
	if q == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidQuery)
	}

	refs, err := s.index.Search(ctx, q, s.topK, scope.AllowedSources)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	return domain.MapReferencesForScope(refs, scope), nil
}

// Status reports model, index and scope state.
func (s *ChatService) Status(ctx context.Context, scope domain.AccessScope) (*driving.StatusReport, error) {
	indexStatus, err := s.index.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading index status: %w", err)
	}

	model := s.gen.ModelName()
	probe := s.gen.Probe(ctx)

	report := &driving.StatusReport{
		Model: driving.ModelReport{
			Name:   model,
			Host:   s.gen.Host(),
			Online: probe.Online,
			Ready:  probe.Ready(model),
		},
		Index: indexStatus,
		Scope: driving.ScopeReport{
			Role:        scope.Role,
			RevealPaths: scope.RevealPaths,
			CanReindex:  scope.CanReindex,
		},
	}
	if probe.Online {
		report.Model.Available = capModels(probe.Available)
	}
	if scope.RevealPaths {
		report.Sources = scope.AllowedSources
	}

	if s.watcher != nil && s.watcher.Dirty() {
		report.HeartbeatLines = append(report.HeartbeatLines,
			"индекс устарел: корпус менялся после последней сборки")
	}
	if s.heartbeat && s.rng() < heartbeatChance {
		report.HeartbeatLines = append(report.HeartbeatLines, s.flavorLine())
	}

	return report, nil
}

// Warmup runs a minimal generation round trip and classifies any
// failure. Privileged scopes only.
func (s *ChatService) Warmup(ctx context.Context, scope domain.AccessScope) (int64, error) {
	if !scope.CanReindex {
		return 0, fmt.Errorf("%w: warmup requires a privileged scope", domain.ErrForbidden)
	}

	start := time.Now()
	system := s.systemPrompt()
	out, err := s.gen.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: "WARMUP: ответь одним словом: OK"},
	}, answerOptions)

	if err != nil || strings.TrimSpace(out) == "" {
		if err != nil {
			logger.Warn("warmup generation failed: %v", err)
		}
		if classified := s.classifyGenerationFailure(ctx); classified != nil {
			return 0, classified
		}
		return 0, domain.ErrModelWarmupFailed
	}
	return time.Since(start).Milliseconds(), nil
}

// --- pipeline stages ---

// sanitizeText collapses whitespace and caps length, counted in runes.
func sanitizeText(input string, limit int) string {
	trimmed := strings.Join(strings.Fields(input), " ")
	if utf8.RuneCountInString(trimmed) > limit {
		runes := []rune(trimmed)
		trimmed = strings.TrimSpace(string(runes[:limit]))
	}
	return trimmed
}

// sanitizeHistory keeps the most recent turns, each capped in length.
func sanitizeHistory(history []domain.Turn) []domain.Turn {
	if len(history) > maxHistoryCap {
		history = history[len(history)-maxHistoryCap:]
	}
	var out []domain.Turn
	for _, turn := range history {
		content := sanitizeText(turn.Content, maxTurnLen)
		if content == "" {
			continue
		}
		role := strings.ToLower(strings.TrimSpace(turn.Role))
		if role != "user" && role != "assistant" {
			continue
		}
		out = append(out, domain.Turn{Role: role, Content: content})
	}
	if len(out) > maxHistoryUsed {
		out = out[len(out)-maxHistoryUsed:]
	}
	return out
}

// dispatchCommand answers slash commands with canned, scope-aware text.
// Unknown slash tokens fall through to the normal pipeline.
func (s *ChatService) dispatchCommand(ctx context.Context, scope domain.AccessScope, message string) (string, bool) {
	first := strings.ToLower(strings.Fields(message)[0])
	switch first {
	case "/help":
		return "Команды: /help, /modes, /sources, /status, /reindex, /scope.\n" +
			"Режимы: QA — ответ по базе, SEARCH — список источников.\n" +
			"Просто задай вопрос, я найду фрагменты и отвечу по ним.", true

	case "/modes":
		return "QA: я ищу фрагменты и формулирую ответ строго по ним.\n" +
			"SEARCH: я возвращаю только список источников без ответа.\n" +
			"Режим выбирается полем mode или определяется по формулировке.", true

	case "/sources":
		if len(scope.AllowedSources) == 0 {
			return "Для твоего уровня доступа зоны не настроены.", true
		}
		return "Доступные зоны: " + strings.Join(scope.AllowedSources, ", ") + ".", true

	case "/status":
		return s.statusText(ctx, scope), true

	case "/reindex":
		if scope.CanReindex {
			return "Переиндексация доступна: вызови операцию reindex, база будет пересобрана целиком.", true
		}
		return "Переиндексация недоступна для твоего уровня доступа.", true

	case "/scope":
		reveal, reindex := "нет", "нет"
		if scope.RevealPaths {
			reveal = "да"
		}
		if scope.CanReindex {
			reindex = "да"
		}
		return fmt.Sprintf("Уровень: %s. Пути раскрываются: %s. Переиндексация: %s.",
			scope.Role, reveal, reindex), true
	}
	return "", false
}

// statusText renders the /status command reply.
func (s *ChatService) statusText(ctx context.Context, scope domain.AccessScope) string {
	var b strings.Builder

	model := s.gen.ModelName()
	probe := s.gen.Probe(ctx)
	switch {
	case !probe.Online:
		b.WriteString("Модель: " + model + " — сервис недоступен.\n")
	case probe.Ready(model):
		b.WriteString("Модель: " + model + " — готова.\n")
	default:
		b.WriteString("Модель: " + model + " — не установлена на сервисе.\n")
	}

	indexStatus, err := s.index.Status(ctx)
	switch {
	case err != nil || !indexStatus.OK:
		b.WriteString("Индекс: не построен.\n")
	default:
		fmt.Fprintf(&b, "Индекс: %d фрагментов, собран %s.\n",
			indexStatus.Chunks, indexStatus.IndexedAt)
	}
	if s.watcher != nil && s.watcher.Dirty() {
		b.WriteString("Внимание: корпус менялся после последней сборки.\n")
	}

	fmt.Fprintf(&b, "Уровень доступа: %s.", scope.Role)
	return b.String()
}

// smallTalkPhrases match a whole normalised message.
var smallTalkPhrases = map[string]bool{
	"привет": true, "здравствуй": true, "здравствуйте": true, "хай": true,
	"добрый день": true, "добрый вечер": true, "доброе утро": true,
	"hi": true, "hello": true, "hey": true,
	"кто ты": true, "ты кто": true, "что ты": true, "что ты умеешь": true,
	"who are you": true, "what are you": true,
}

var punctTrim = regexp.MustCompile(`[?!.,;:()«»"']`)

func isSmallTalk(message string) bool {
	normal := strings.Join(strings.Fields(punctTrim.ReplaceAllString(strings.ToLower(message), " ")), " ")
	return smallTalkPhrases[normal]
}

// searchCues flag overview-style requests.
var searchCues = []string{
	"найди", "найти", "поиск", "покажи", "список", "обзор",
	"источники", "материалы", "search", "find", "list", "overview",
}

// resolveMode picks the answer mode. An explicit caller mode wins.
func resolveMode(explicit domain.Mode, message string) domain.Mode {
	switch explicit {
	case domain.ModeQA, domain.ModeSearch:
		return explicit
	}
	lower := strings.ToLower(message)
	for _, cue := range searchCues {
		if strings.Contains(lower, cue) {
			return domain.ModeSearch
		}
	}
	if utf8.RuneCountInString(message) > searchLengthThreshold {
		return domain.ModeSearch
	}
	return domain.ModeQA
}

// broadPhrases trigger a clarifying question instead of an answer.
var broadPhrases = []string{
	"расскажи все", "расскажи всё", "объясни все", "объясни всё",
	"все подробно", "всё подробно", "обо всем", "обо всём",
	"explain everything", "in depth", "tell me everything",
}

func isBroadQuestion(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range broadPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// stopWords are dropped when deriving the token core of a message.
var stopWords = map[string]bool{
	"и": true, "в": true, "на": true, "о": true, "об": true, "про": true,
	"как": true, "что": true, "это": true, "а": true, "но": true, "или": true,
	"для": true, "по": true, "с": true, "у": true, "не": true, "же": true,
	"ли": true, "бы": true, "то": true, "из": true, "к": true, "от": true,
	"за": true, "при": true, "без": true, "до": true, "над": true, "под": true,
	"ты": true, "я": true, "мне": true, "есть": true, "расскажи": true,
	"скажи": true, "покажи": true, "какие": true, "какой": true, "какая": true,
	"где": true, "когда": true, "почему": true, "зачем": true, "чем": true,
	"the": true, "a": true, "an": true, "of": true, "to": true, "in": true,
	"on": true, "for": true, "and": true, "or": true, "is": true, "are": true,
	"what": true, "how": true, "tell": true, "me": true, "about": true,
	"please": true, "show": true,
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// tokenCore strips stop words from a message, keeping token order.
func tokenCore(message string) []string {
	var core []string
	for _, token := range wordPattern.FindAllString(strings.ToLower(message), -1) {
		if !stopWords[token] {
			core = append(core, token)
		}
	}
	return core
}

// buildCandidates orders the retrieval fallback ladder: raw message,
// raw message plus previous user turn, their stop-word-stripped cores,
// then 3-gram and 2-gram tails of the message core.
func buildCandidates(message, prevUser string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(candidate string) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || seen[candidate] {
			return
		}
		seen[candidate] = true
		out = append(out, candidate)
	}

	add(message)
	if prevUser != "" {
		add(message + " " + prevUser)
	}

	core := tokenCore(message)
	add(strings.Join(core, " "))
	if prevUser != "" {
		add(strings.Join(tokenCore(message+" "+prevUser), " "))
	}

	if len(core) > 3 {
		add(strings.Join(core[len(core)-3:], " "))
	}
	if len(core) > 2 {
		add(strings.Join(core[len(core)-2:], " "))
	}
	return out
}

// lastUserTurn returns the most recent user history entry, if any.
func lastUserTurn(history []domain.Turn) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			return history[i].Content
		}
	}
	return ""
}

// retrieve tries candidates in order and accepts the first that yields
// at least one reference. Greedy; later candidates are not re-scored.
func (s *ChatService) retrieve(ctx context.Context, scope domain.AccessScope, message string, history []domain.Turn) ([]domain.Reference, string) {
	for _, candidate := range buildCandidates(message, lastUserTurn(history)) {
		refs, err := s.index.Search(ctx, candidate, s.topK, scope.AllowedSources)
		if err != nil {
			logger.Warn("retrieval candidate %q failed: %v", candidate, err)
			continue
		}
		if len(refs) > 0 {
			logger.Debug("retrieval hit on candidate %q (%d refs)", candidate, len(refs))
			return refs, candidate
		}
	}
	return nil, ""
}

// retrieveNarrow is the stage-9 fallback: the first few core tokens.
func (s *ChatService) retrieveNarrow(ctx context.Context, scope domain.AccessScope, message string) ([]domain.Reference, string) {
	core := tokenCore(message)
	if len(core) == 0 {
		return nil, ""
	}
	if len(core) > 3 {
		core = core[:3]
	}
	query := strings.Join(core, " ")
	refs, err := s.index.Search(ctx, query, s.topK, scope.AllowedSources)
	if err != nil {
		logger.Warn("narrow retrieval %q failed: %v", query, err)
		return nil, query
	}
	return refs, query
}

// noDataOffers lists what the caller can do next, scope-aware.
func noDataOffers(scope domain.AccessScope) string {
	offers := "Варианты: переформулируй запрос или посмотри близкие материалы ниже."
	if scope.CanReindex {
		offers += " Если корпус менялся, запусти переиндексацию."
	}
	return offers
}

// generate assembles the grounded prompt and calls the generation
// service, classifying empty output into the failure taxonomy.
func (s *ChatService) generate(ctx context.Context, scope domain.AccessScope, message string, history []domain.Turn, refs []domain.Reference) (string, error) {
	contextBlock := buildContextBlock(scope, refs)
	questionBlock := buildQuestionBlock(message, history)

	template, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil {
		return "", fmt.Errorf("loading answer prompt: %w", err)
	}
	prompt := fmt.Sprintf(template, contextBlock, questionBlock)

	out, err := s.gen.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: s.systemPrompt()},
		{Role: "user", Content: prompt},
	}, answerOptions)
	if err != nil {
		logger.Warn("generation failed: %v", err)
		out = ""
	}

	answer := strings.TrimSpace(out)
	if answer == "" {
		if classified := s.classifyGenerationFailure(ctx); classified != nil {
			return "", classified
		}
		return "", domain.ErrModelOffline
	}
	return answer, nil
}

// buildContextBlock renders scope and numbered reference chunks.
func buildContextBlock(scope domain.AccessScope, refs []domain.Reference) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SCOPE: %s (зоны: %s)\n\n", scope.Role, strings.Join(scope.AllowedSources, ", "))
	for i, ref := range refs {
		header := fmt.Sprintf("[%d] %s", i+1, ref.Path)
		if ref.Anchor != "" {
			header += "#" + ref.Anchor
		}
		b.WriteString(header)
		if ref.Excerpt != "" {
			b.WriteString("\n" + ref.Excerpt)
		}
		if i < len(refs)-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// buildQuestionBlock prepends the recent dialogue transcript, if any.
func buildQuestionBlock(message string, history []domain.Turn) string {
	if len(history) == 0 {
		return message
	}
	var b strings.Builder
	b.WriteString("DIALOGUE:\n")
	for _, turn := range history {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
	}
	b.WriteString("\n")
	b.WriteString(message)
	return b.String()
}

func (s *ChatService) systemPrompt() string {
	prompt, err := s.prompts.Load(driven.PromptChatSystem)
	if err != nil {
		logger.Warn("loading system prompt: %v", err)
		return ""
	}
	return prompt
}

// classifyGenerationFailure probes the service and maps its state onto
// the failure taxonomy. Returns nil when the service looks healthy.
func (s *ChatService) classifyGenerationFailure(ctx context.Context) error {
	status := s.gen.Probe(ctx)
	if !status.Online {
		return domain.ErrGeneratorOffline
	}
	model := s.gen.ModelName()
	if !status.Ready(model) {
		return &domain.ModelMissingError{
			Model:     model,
			Available: capModels(status.Available),
		}
	}
	return nil
}

func capModels(models []string) []string {
	if len(models) > maxAvailableModels {
		return models[:maxAvailableModels]
	}
	return models
}

var cyrillicPattern = regexp.MustCompile(`[А-Яа-яЁё]`)
var latinPattern = regexp.MustCompile(`[A-Za-z]`)

// isLikelyRussian compares Cyrillic and Latin letter counts.
func isLikelyRussian(text string) bool {
	cyr := len(cyrillicPattern.FindAllString(text, -1))
	if cyr == 0 {
		return false
	}
	lat := len(latinPattern.FindAllString(text, -1))
	return cyr >= lat
}

// nextStepMarkers suggest the answer already points somewhere.
var nextStepMarkers = []string{"?", "попробуй", "уточни", "следующ", "см."}

// postProcess applies language substitution, the next-step suggestion
// and the optional heartbeat line.
func (s *ChatService) postProcess(answer string) string {
	if !isLikelyRussian(answer) {
		answer = ruFallbackText
	}

	lower := strings.ToLower(answer)
	hasStep := false
	for _, marker := range nextStepMarkers {
		if strings.Contains(lower, marker) {
			hasStep = true
			break
		}
	}
	if !hasStep {
		answer += "\n\n" + nextStepText
	}

	if s.heartbeat && s.rng() < heartbeatChance {
		answer += "\n\n" + s.flavorLine()
	}
	return answer
}

func (s *ChatService) flavorLine() string {
	return heartbeatLines[int(s.rng()*float64(len(heartbeatLines)))%len(heartbeatLines)]
}
