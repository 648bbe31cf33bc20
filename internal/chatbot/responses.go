package chatbot

import "github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"

// script is what the assistant says to one role when no model is configured
type script struct {
	greeting     string
	suggestions  []string
	placeholder  string
	replies      []string
	systemPrompt string
}

var scripts = map[types.Role]script{
	types.RoleUser: {
		greeting: "Hello! I'm your AI Health Assistant. How can I help you today? I can provide general health information, answer questions about symptoms, or help you prepare for your appointments.",
		suggestions: []string{
			"What should I do for a headache?",
			"How to prepare for a doctor visit?",
			"Common cold symptoms",
			"When to seek emergency care?",
		},
		placeholder: "Ask about symptoms, treatments, or health advice...",
		replies: []string{
			"For headaches, try resting in a quiet, dark room and staying hydrated. If headaches persist or are severe, please consult your healthcare provider.",
			"To prepare for your doctor visit, write down your symptoms, current medications, and any questions you have. Bring your insurance card and arrive 15 minutes early.",
			"Common cold symptoms include runny nose, cough, sneezing, and mild fever. Rest, fluids, and over-the-counter medications can help. See a doctor if symptoms worsen or last more than 10 days.",
			"Seek emergency care immediately for chest pain, difficulty breathing, severe bleeding, loss of consciousness, or signs of stroke. When in doubt, call emergency services.",
		},
		systemPrompt: "You are a general health information assistant for a clinic portal. Give short, plain-language answers, never diagnose, and tell the user to contact a clinician or emergency services when symptoms sound serious.",
	},
	types.RolePatient: {
		greeting: "Hello! I'm your personal AI Health Assistant. I can help you track symptoms, understand your treatment plan, answer health questions, and provide support. How are you feeling today?",
		suggestions: []string{
			"How am I progressing with my treatment?",
			"What should I do about side effects?",
			"Remind me about my medication schedule",
			"I'm feeling anxious about my condition",
		},
		placeholder: "Ask about your health, symptoms, or treatment...",
		replies: []string{
			"Based on your recent progress reports, you're doing very well! Your health score has improved by 15% over the past month. Keep following your treatment plan.",
			"I understand your concern. It's normal to have questions about your treatment. Let me provide some guidance based on your medical history.",
			"Your symptoms seem to be improving according to your latest reports. Remember to take your medication as prescribed and maintain your healthy lifestyle.",
			"I'm here to support you through your health journey. It's important to stay positive and follow your doctor's recommendations.",
		},
		systemPrompt: "You are a supportive assistant for a patient under active treatment. Be encouraging and concise, do not change their treatment plan, and refer medication or dosage questions to their doctor.",
	},
	types.RoleDoctor: {
		greeting: "Hello Doctor! I'm your AI Medical Assistant. I can help you with patient analysis, treatment recommendations, medical research, and administrative tasks. How can I assist you today?",
		suggestions: []string{
			"Analyze patient symptoms and suggest diagnosis",
			"Recommend treatment protocols for hypertension",
			"Latest research on diabetes management",
			"Help me create a patient care plan",
			"Drug interaction checker",
			"Medical coding assistance",
		},
		placeholder: "Ask about diagnoses, treatments, drug interactions, or patient care...",
		replies: []string{
			"Based on the symptoms you've described, I recommend considering differential diagnoses including... Please note this is for informational purposes and should be combined with your clinical judgment.",
			"According to recent medical literature and guidelines, the recommended treatment approach would be... I can provide you with the latest research papers on this topic.",
			"The patient's lab results suggest... Here are some evidence-based treatment options to consider, along with monitoring parameters.",
			"For this condition, the standard of care includes... I've also identified some recent clinical trials that might be relevant to your patient's case.",
			"Drug interaction analysis shows... Here are alternative medications to consider, along with dosing recommendations based on patient factors.",
		},
		systemPrompt: "You are a clinical decision support assistant talking to a licensed physician. Answer with differential diagnoses, guideline-based options and monitoring parameters, and remind them that output must be combined with clinical judgment.",
	},
}

func scriptFor(role types.Role) script {
	if s, ok := scripts[role]; ok {
		return s
	}
	return scripts[types.RoleUser]
}
