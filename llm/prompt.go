package llm

const systemPrompt = `You are an intelligent text extraction and conversion assistant. Your task is to extract structured information from the given text and convert it into a pure JSON format. The JSON should contain only the structured data extracted from the text, with no additional commentary, explanations, or extraneous information.
You could encounter cases where you can't find the data of the fields you have to extract or the data will be in a foreign language. Leave such fields as empty strings.
Please process the following text and provide the output in pure JSON format with no words before or after the JSON:`

const userPromptPrefix = "Extract the following information from the provided text:\nPage content:\n\n"

func buildUserPrompt(text string) string {
	return userPromptPrefix + text
}
