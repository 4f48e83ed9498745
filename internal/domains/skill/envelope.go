package skill

// Request types and intents the skill reacts to.
const (
	LaunchRequest       = "LaunchRequest"
	IntentRequest       = "IntentRequest"
	SessionEndedRequest = "SessionEndedRequest"

	AskIntent    = "InterrogaGeminiIntent"
	HelpIntent   = "AMAZON.HelpIntent"
	CancelIntent = "AMAZON.CancelIntent"
	StopIntent   = "AMAZON.StopIntent"

	PromptSlot = "prompt"
)

type RequestEnvelope struct {
	Version string  `json:"version"`
	Session Session `json:"session"`
	Request Request `json:"request"`
}

type Session struct {
	New         bool           `json:"new"`
	SessionID   string         `json:"sessionId"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	Application struct {
		ApplicationID string `json:"applicationId"`
	} `json:"application"`
}

type Request struct {
	Type      string  `json:"type" binding:"required"`
	RequestID string  `json:"requestId"`
	Timestamp string  `json:"timestamp,omitempty"`
	Locale    string  `json:"locale,omitempty"`
	Intent    *Intent `json:"intent,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots,omitempty"`
}

type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// SlotValue returns the value of the named slot, or "" when absent.
func (r Request) SlotValue(name string) string {
	if r.Intent == nil {
		return ""
	}
	return r.Intent.Slots[name].Value
}

func (r Request) IsIntent(names ...string) bool {
	if r.Type != IntentRequest || r.Intent == nil {
		return false
	}
	for _, n := range names {
		if r.Intent.Name == n {
			return true
		}
	}
	return false
}

type ResponseEnvelope struct {
	Version  string   `json:"version"`
	Response Response `json:"response"`
}

type Response struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	ShouldEndSession *bool         `json:"shouldEndSession,omitempty"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Reprompt struct {
	OutputSpeech OutputSpeech `json:"outputSpeech"`
}

// builder helpers

func plain(text string) *OutputSpeech {
	return &OutputSpeech{Type: "PlainText", Text: text}
}

// Speak says text and keeps the session open for reprompt.
func Speak(text, reprompt string) ResponseEnvelope {
	end := false
	return ResponseEnvelope{Version: "1.0", Response: Response{
		OutputSpeech:     plain(text),
		Reprompt:         &Reprompt{OutputSpeech: *plain(reprompt)},
		ShouldEndSession: &end,
	}}
}

// Say only speaks; the platform decides whether the session stays open.
func Say(text string) ResponseEnvelope {
	return ResponseEnvelope{Version: "1.0", Response: Response{OutputSpeech: plain(text)}}
}

// Tell says text and closes the session.
func Tell(text string) ResponseEnvelope {
	end := true
	return ResponseEnvelope{Version: "1.0", Response: Response{
		OutputSpeech:     plain(text),
		ShouldEndSession: &end,
	}}
}

func Empty() ResponseEnvelope {
	return ResponseEnvelope{Version: "1.0"}
}
