package analyst

import (
	"fmt"
	"strings"

	"github.com/evinsights/analyst-engine/pkg/datasource"
)

// Temperatures and output caps per pipeline stage.
const (
	classifyTemperature = 0.1
	classifyMaxTokens   = 200

	generateTemperature = 0.1
	generateMaxTokens   = 300

	groundedTemperature = 0.5
	groundedMaxTokens   = 400

	generalTemperature = 0.7
	generalMaxTokens   = 500
)

func classificationPrompt(question string) string {
	return fmt.Sprintf(`Classify this question about electric vehicles:

Question: "%s"

Determine if this is:
1. GENERAL - General knowledge about EVs OR questions about the dataset structure/contents
   Examples: "What is an EV?", "How do EVs work?", "Tell me about this dataset", "What data do you have?"

2. DATA_QUERY - Asking for specific data/statistics from database (requires actual query execution)
   Examples: "How many Teslas?", "Top 5 manufacturers", "Average range by year"

3. HYBRID - Needs both general knowledge AND database data
   Examples: "What is CAFV and how many qualify?", "Explain range anxiety and show averages"

IMPORTANT:
- Questions like "explain the dataset", "what's in the database", "tell me about the data" are GENERAL
- Only use DATA_QUERY if specific numbers/counts/statistics are explicitly requested

Respond ONLY with valid JSON:
{
    "type": "GENERAL" | "DATA_QUERY" | "HYBRID",
    "needs_database": true/false,
    "reasoning": "brief explanation"
}`, question)
}

// NoSQLSentinel is the literal the model emits when a question cannot be
// answered from the database.
const NoSQLSentinel = "NO_SQL_NEEDED"

func generationPrompt(question, schemaText string) string {
	return fmt.Sprintf(`You are an expert PostgreSQL SQL generator.

DATABASE SCHEMA:
%s

Common queries:
- Count vehicles: SELECT COUNT(*) FROM vehicle
- Top makes: SELECT make, COUNT(*) FROM vehicle v JOIN model m ON v.model_id = m.model_id GROUP BY make
- Average range: SELECT AVG(electric_range) FROM vehicle WHERE electric_range > 0

RULES:
- Output ONLY valid PostgreSQL SQL
- Use proper JOINs
- SELECT-only queries
- Generate exactly one SQL query and nothing else
- Do not give any suggestions

Convert this question to SQL:
Question: "%s"

Generate ONLY the SQL query, no explanations.
If the question cannot be answered with the database, respond with: %s`, schemaText, question, NoSQLSentinel)
}

func groundedPrompt(question, rowView string) string {
	return fmt.Sprintf(`You are answering a question about electric vehicle data.

Question: "%s"

Database Results:
%s

Provide a natural, conversational answer in complete sentences.
- Write like you're talking to a person, not listing data
- Use specific numbers from the results
- Format numbers nicely (use commas for thousands)
- Make it easy to understand
- Be concise but informative
- If asking about "best" or "highest", clearly state what the answer is
- If no data is present, say no matching records were found

Your answer:`, question, rowView)
}

const generalSystemPrompt = `You are a friendly and knowledgeable expert on electric vehicles (EVs) and the EV registration dataset.

Your communication style:
- Write in complete, natural sentences
- Be conversational and easy to understand
- Use specific examples when helpful
- Avoid overly technical jargon unless asked
- Make complex topics accessible

You have access to a comprehensive EV database containing:
- 150,000+ electric vehicle records
- Vehicle details: make, model, year, VIN
- Electric range data for BEVs and PHEVs
- Geographic information (city, county, state)
- CAFV (Clean Alternative Fuel Vehicle) eligibility status
- Location coordinates for mapping

You provide helpful information about:
- EV technology and how it works
- Types of EVs (BEV, PHEV, etc.)
- Charging infrastructure
- Environmental benefits
- Market trends
- Policy and regulations
- The dataset structure and contents

When asked about "this dataset" or "the database", explain what data is available and what kinds of questions can be answered.

When you have database results, integrate them naturally into your answer rather than just listing facts.`

func generalUserMessage(question, rowView, history string) string {
	var b strings.Builder
	if history != "" {
		b.WriteString(history)
		b.WriteString("\n")
	}
	b.WriteString(question)
	if rowView != "" {
		fmt.Fprintf(&b, `

Here's relevant data from our EV database:
%s

Provide a natural, conversational answer that integrates this data seamlessly.
Write in complete sentences as if explaining to a curious friend.
Use specific numbers and examples from the data to support your explanation.`, rowView)
	}
	return b.String()
}

// formatRowView renders up to rowLimit result rows as one map-style line per
// row for prompt embedding.
func formatRowView(result *datasource.ExecutionResult, rowLimit int) string {
	if result == nil || len(result.Rows) == 0 {
		return "No data found."
	}
	if rowLimit <= 0 {
		rowLimit = 10
	}

	rows := result.Rows
	if len(rows) > rowLimit {
		rows = rows[:rowLimit]
	}

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("{")
		for j, col := range result.Columns {
			if j > 0 {
				b.WriteString(", ")
			}
			var value any
			if j < len(row) {
				value = row[j]
			}
			fmt.Fprintf(&b, "%s: %v", col, value)
		}
		b.WriteString("}")
	}
	return b.String()
}
