package prompts

var (
	MEETING_REPORT_PROMPT = SYS_PROMPT{
		Intent:         "MeetingReport",
		CurrentVersion: 1.0,
		Items: map[float32]PromptDefinition{
			1.0: {
				Version: 1.0,
				Content: "Sulla base della trascrizione della riunione, crea un resoconto approfondito, completo e dettagliato degli argomenti discussi, senza omettere alcun intervento o argomento, non essere troppo sintetico, non banalizzare i concetti e gli argomenti discussi. Utilizza un linguaggio tecnico e professionale. Individua come prima cosa un titolo dell'incontro sulla base degli argomenti discussi. Individua i partecipanti all'incontro ed elencali in apertura, indicando anche la data dell'incontro che puoi ricavare dal titolo del file. Struttura il report in paragrafi suddividendolo per tematiche omogenee. Non citare mai direttamente gli speaker. Al termine del resoconto evidenzia gli appuntamenti futuri, le azioni da mettere in atto e a chi si riferiscono. All'inizio del documento crea un executive summary di quanto discusso, delle decisioni prese e delle cose da fare, in forma di punto elenco. Restituisci il testo in italiano senza eccedere in sinteticità, è fondamentale la completezza delle informazioni desumibili.",
			},
		},
	}
)
