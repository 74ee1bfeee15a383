package quizgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/menuquiz/internal/catalog"
)

// responseSchema is the reply shape every prompt asks for. Field names and
// difficulty codes are the same in every language.
const responseSchema = `[{"question_text":"...","question_type":"multiple_choice|yes_no","category":"...","difficulty":"facil|medio|dificil","options":[{"text":"...","correct":true/false}]}]`

// promptText holds the wording of the prompts for one language.
type promptText struct {
	system string

	exactCount   string // %d
	role         string
	area         string
	areaDesc     string
	menu         string
	requirements string
	unique       string // %d
	categories   string // %s
	types        string
	onlyTypes    string // %s
	levels       string
	onlyLevel    string // %s
	specific     string
	focus        string
	options      string
	format       string
}

var prompts = map[string]promptText{
	"es": {
		system: `Eres un experto en evaluación de personal de restaurante. Tu tarea es generar preguntas de evaluación específicas basadas en el contenido de menús/cartas proporcionados.

REGLAS CRÍTICAS:
1. Debes generar EXACTAMENTE el número de preguntas solicitado
2. Todas las preguntas deben estar basadas en el contenido proporcionado
3. Debes responder ÚNICAMENTE con un array JSON válido
4. NO incluyas texto explicativo antes o después del JSON
5. Asegúrate de que cada pregunta sea única y relevante

FORMATO DE RESPUESTA:
`,
		exactCount:   "IMPORTANTE: Debes generar EXACTAMENTE %d preguntas. No menos, no más.",
		role:         "Rol",
		area:         "ÁREA ESPECÍFICA",
		areaDesc:     "DESCRIPCIÓN DEL ÁREA",
		menu:         "CONTENIDO DEL MENÚ",
		requirements: "REQUISITOS",
		unique:       "Generar EXACTAMENTE %d preguntas únicas",
		categories:   "Categorías a cubrir: %s",
		types:        "Tipos: multiple_choice (4 opciones) o yes_no (2 opciones)",
		onlyTypes:    "Usar solo estos tipos: %s (multiple_choice con 4 opciones, yes_no con 2)",
		levels:       "Niveles de dificultad: facil, medio, dificil",
		onlyLevel:    "Todas las preguntas con dificultad: %s",
		specific:     "Las preguntas deben ser específicas al contenido proporcionado",
		focus:        "ENFOQUE",
		options:      "Cada pregunta debe tener opciones con una correcta marcada",
		format:       "FORMATO DE RESPUESTA - SOLO JSON (sin texto adicional):",
	},
	"en": {
		system: `You are an HR expert specialized in restaurants. Your task is to generate evaluation questions for restaurant staff based on specific menus/cards. Questions should be practical, relevant, and specific to the provided menu content.

CRITICAL RULES:
1. Generate EXACTLY the requested number of questions
2. Every question must be based on the provided content
3. Respond ONLY with a valid JSON array
4. Do NOT include explanatory text before or after the JSON
5. Make sure every question is unique and relevant

RESPONSE FORMAT:
`,
		exactCount:   "IMPORTANT: You must generate EXACTLY %d questions. No fewer, no more.",
		role:         "Role",
		area:         "SPECIFIC AREA",
		areaDesc:     "AREA DESCRIPTION",
		menu:         "MENU CONTENT",
		requirements: "REQUIREMENTS",
		unique:       "Generate EXACTLY %d unique questions",
		categories:   "Categories to cover: %s",
		types:        "Types: multiple_choice (4 options) or yes_no (2 options)",
		onlyTypes:    "Use only these types: %s (multiple_choice with 4 options, yes_no with 2)",
		levels:       "Difficulty levels: facil (easy), medio (medium), dificil (hard)",
		onlyLevel:    "Every question must have difficulty: %s",
		specific:     "Questions must be specific to the provided content",
		focus:        "FOCUS",
		options:      "Every question must have options with exactly one marked correct",
		format:       "RESPONSE FORMAT - JSON ONLY (no additional text):",
	},
	"pt": {
		system: `Você é um especialista em recursos humanos especializado em restaurantes. Sua tarefa é gerar perguntas de avaliação para funcionários de restaurante baseadas em menus/cardápios específicos. As perguntas devem ser práticas, relevantes e específicas ao conteúdo do menu fornecido.

REGRAS CRÍTICAS:
1. Gere EXATAMENTE o número de perguntas solicitado
2. Todas as perguntas devem ser baseadas no conteúdo fornecido
3. Responda APENAS com um array JSON válido
4. NÃO inclua texto explicativo antes ou depois do JSON
5. Garanta que cada pergunta seja única e relevante

FORMATO DE RESPOSTA:
`,
		exactCount:   "IMPORTANTE: Você deve gerar EXATAMENTE %d perguntas. Nem menos, nem mais.",
		role:         "Papel",
		area:         "ÁREA ESPECÍFICA",
		areaDesc:     "DESCRIÇÃO DA ÁREA",
		menu:         "CONTEÚDO DO MENU",
		requirements: "REQUISITOS",
		unique:       "Gerar EXATAMENTE %d perguntas únicas",
		categories:   "Categorias a cobrir: %s",
		types:        "Tipos: multiple_choice (4 opções) ou yes_no (2 opções)",
		onlyTypes:    "Usar apenas estes tipos: %s (multiple_choice com 4 opções, yes_no com 2)",
		levels:       "Níveis de dificuldade: facil (fácil), medio (médio), dificil (difícil)",
		onlyLevel:    "Todas as perguntas com dificuldade: %s",
		specific:     "As perguntas devem ser específicas ao conteúdo fornecido",
		focus:        "FOCO",
		options:      "Cada pergunta deve ter opções com uma correta marcada",
		format:       "FORMATO DE RESPOSTA - APENAS JSON (sem texto adicional):",
	},
	"fr": {
		system: `Vous êtes un expert en ressources humaines spécialisé dans la restauration. Votre tâche consiste à générer des questions d'évaluation pour le personnel de restaurant à partir de menus/cartes spécifiques. Les questions doivent être pratiques, pertinentes et directement liées au contenu du menu fourni.

RÈGLES CRITIQUES:
1. Générez EXACTEMENT le nombre de questions demandé
2. Toutes les questions doivent reposer sur le contenu fourni
3. Répondez UNIQUEMENT avec un tableau JSON valide
4. N'incluez PAS de texte explicatif avant ou après le JSON
5. Chaque question doit être unique et pertinente

FORMAT DE RÉPONSE:
`,
		exactCount:   "IMPORTANT: Vous devez générer EXACTEMENT %d questions. Ni plus, ni moins.",
		role:         "Rôle",
		area:         "ZONE SPÉCIFIQUE",
		areaDesc:     "DESCRIPTION DE LA ZONE",
		menu:         "CONTENU DU MENU",
		requirements: "EXIGENCES",
		unique:       "Générer EXACTEMENT %d questions uniques",
		categories:   "Catégories à couvrir: %s",
		types:        "Types: multiple_choice (4 options) ou yes_no (2 options)",
		onlyTypes:    "Utiliser uniquement ces types: %s (multiple_choice avec 4 options, yes_no avec 2)",
		levels:       "Niveaux de difficulté: facil (facile), medio (moyen), dificil (difficile)",
		onlyLevel:    "Toutes les questions avec la difficulté: %s",
		specific:     "Les questions doivent être spécifiques au contenu fourni",
		focus:        "FOCUS",
		options:      "Chaque question doit avoir des options dont une seule marquée correcte",
		format:       "FORMAT DE RÉPONSE - JSON UNIQUEMENT (sans texte supplémentaire):",
	},
}

// textFor returns the prompt wording for lang, falling back to Spanish.
func textFor(lang string) promptText {
	if p, ok := prompts[lang]; ok {
		return p
	}
	return prompts[catalog.DefaultLanguage]
}

// SupportedPromptLanguage reports whether prompts exist for lang.
func SupportedPromptLanguage(lang string) bool {
	_, ok := prompts[lang]
	return ok
}

// PromptInput is what the user prompt is built from.
type PromptInput struct {
	Role          catalog.Role
	Area          *catalog.Area
	Language      string
	Count         int
	Categories    []string
	QuestionTypes []QuestionType
	Difficulty    Difficulty
}

func (r Request) promptInput() PromptInput {
	return PromptInput{
		Role:          r.Role,
		Area:          r.Area,
		Language:      r.Language,
		Count:         r.Count,
		Categories:    r.Categories,
		QuestionTypes: r.QuestionTypes,
		Difficulty:    r.Difficulty,
	}
}

// withCount returns a copy asking for n questions.
func (in PromptInput) withCount(n int) PromptInput {
	in.Count = n
	return in
}

// SystemPrompt returns the system prompt for lang.
func SystemPrompt(lang string) string {
	return textFor(lang).system + responseSchema
}

// BuildUserPrompt builds the user prompt around menuText.
func BuildUserPrompt(menuText string, in PromptInput) string {
	t := textFor(in.Language)

	var b strings.Builder

	fmt.Fprintf(&b, t.exactCount+"\n\n", in.Count)

	fmt.Fprintf(&b, "%s: %s", t.role, in.Role.Name)
	if in.Role.Description != "" {
		fmt.Fprintf(&b, " (%s)", in.Role.Description)
	}
	b.WriteString("\n")
	if in.Area != nil {
		fmt.Fprintf(&b, "\n%s: %s\n", t.area, in.Area.Name)
		fmt.Fprintf(&b, "%s: %s\n", t.areaDesc, in.Area.Description)
	}

	fmt.Fprintf(&b, "\n%s:\n%s\n\n", t.menu, menuText)

	fmt.Fprintf(&b, "%s:\n", t.requirements)
	fmt.Fprintf(&b, "- "+t.unique+"\n", in.Count)
	fmt.Fprintf(&b, "- "+t.categories+"\n", strings.Join(in.Categories, ", "))
	if len(in.QuestionTypes) > 0 {
		types := make([]string, len(in.QuestionTypes))
		for i, qt := range in.QuestionTypes {
			types[i] = string(qt)
		}
		fmt.Fprintf(&b, "- "+t.onlyTypes+"\n", strings.Join(types, ", "))
	} else {
		fmt.Fprintf(&b, "- %s\n", t.types)
	}
	if in.Difficulty != "" {
		fmt.Fprintf(&b, "- "+t.onlyLevel+"\n", in.Difficulty)
	} else {
		fmt.Fprintf(&b, "- %s\n", t.levels)
	}
	fmt.Fprintf(&b, "- %s\n", t.specific)
	if in.Area != nil {
		if focus := in.Role.FocusFor(in.Language); focus != "" {
			fmt.Fprintf(&b, "- %s: %s\n", t.focus, focus)
		}
	}
	fmt.Fprintf(&b, "- %s\n", t.options)

	fmt.Fprintf(&b, "\n%s\n%s", t.format, responseSchema)

	return b.String()
}
