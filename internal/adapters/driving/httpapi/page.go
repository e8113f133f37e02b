package httpapi

// indexPage is the single page served at "/". Answers are escaped before
// display; only the <br> and <em> tags the pipeline emits are restored.
const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>medibot</title>
<style>
body { font-family: sans-serif; max-width: 46rem; margin: 2rem auto; padding: 0 1rem; }
textarea { width: 100%; height: 4rem; }
#answer { margin-top: 1.5rem; line-height: 1.5; }
.refused { color: #a33; }
</style>
</head>
<body>
<h1>medibot</h1>
<p>Answers come only from a closed set of trusted medical sources.</p>
<form id="ask">
<textarea name="question" placeholder="Ask a medical question"></textarea>
<button type="submit">Ask</button>
</form>
<div id="answer"></div>
<script>
const escapeHTML = (s) => s.replace(/&/g, "&amp;").replace(/</g, "&lt;").replace(/>/g, "&gt;");
document.getElementById("ask").addEventListener("submit", async (e) => {
  e.preventDefault();
  const out = document.getElementById("answer");
  out.textContent = "Thinking...";
  out.className = "";
  const question = e.target.question.value;
  try {
    const res = await fetch("/ask", {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify({question}),
    });
    const data = await res.json();
    if (!res.ok) { out.textContent = data.error; return; }
    out.innerHTML = escapeHTML(data.answer)
      .replace(/&lt;br&gt;/g, "<br>")
      .replace(/&lt;(\/?)em&gt;/g, "<$1em>");
    if (data.outcome === "refused") out.className = "refused";
  } catch (err) {
    out.textContent = "Request failed.";
  }
});
</script>
</body>
</html>
`
