package prompts

// Spoken replies of the voice skill.
const (
	SkillWelcome       = "Benvenuto! Puoi chiedermi qualsiasi cosa."
	SkillAskReprompt   = "Cosa vorresti chiedere?"
	SkillHelp          = "Puoi chiedermi qualsiasi cosa e io cercherò di risponderti usando Gemini."
	SkillFollowUp      = "Posso aiutarti con qualcos'altro?"
	SkillNotUnderstood = "Non ho capito la tua domanda. Riprova."
	SkillModelError    = "Si è verificato un errore durante l'interrogazione di Gemini. Riprova più tardi."
	SkillGoodbye       = "A presto!"
	SkillUnexpected    = "Si è verificato un errore imprevisto. Riprova più tardi."
)
