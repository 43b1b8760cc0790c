package analyze

// The prompts are kept in Portuguese: the application serves a
// Portuguese-speaking audience and the model output language follows the
// prompt language.

const analysisSystemPrompt = "Você é um analista de mídia experiente e detalhista, focado em extrair significado e estrutura."

const analysisPrompt = `Analise o seguinte diálogo ou descrição de conteúdo de um vídeo/áudio e extraia os seguintes elementos:
-   **Narrativa Principal:** Qual é a história central ou o objetivo principal do conteúdo?
-   **Enredo/Estrutura:** Descreva a sequência de eventos ou a estrutura lógica do conteúdo.
-   **Diálogo Chave:** Cite exemplos de falas importantes que definem o tom ou avançam a história.
-   **Contexto Semântico:** Quais são os temas, mensagens ou informações subjacentes? Qual é o propósito do conteúdo?
-   **Personagens/Participantes:** Se aplicável, identifique os principais participantes e suas prováveis relações ou papéis.

Apresente a análise de forma clara e organizada, utilizando tópicos ou parágrafos.

---
Conteúdo da Mídia (Transcrição):
%s`

const answerSystemPrompt = "Você é um assistente útil e preciso que responde perguntas sobre o conteúdo de mídias, utilizando a transcrição e análise semântica fornecidas."

const answerPrompt = `Com base no seguinte conteúdo da mídia (transcrição completa) e na análise semântica já realizada,
responda à pergunta do usuário. Mantenha a resposta concisa, clara e diretamente relacionada ao conteúdo fornecido.
Se a informação não estiver disponível no contexto, indique isso.

---
Transcrição Completa da Mídia:
%s

---
Análise Semântica Anterior:
%s

---
Pergunta do Usuário:
%s

Resposta:`
