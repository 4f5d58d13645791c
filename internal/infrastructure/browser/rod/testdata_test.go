package rod

const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
</body>
</html>`

	FormHTML = `<!DOCTYPE html>
<html>
<body>
	<form id="login">
		<input id="username" type="text" name="username" />
		<input id="password" type="password" name="password" />
		<button type="submit">Login</button>
	</form>
	<a href="#secure">  Elemental Selenium </a>
</body>
</html>`

	InteractiveHTML = `<!DOCTYPE html>
<html>
<body>
	<button id="btn">Click Me</button>
	<div id="result"></div>
	<div id="hidden" style="display:none">Hidden</div>
	<script>
		document.getElementById('btn').addEventListener('click', function() {
			document.getElementById('result').textContent = 'Clicked!';
		});
	</script>
</body>
</html>`

	LargeHTML = `<!DOCTYPE html>
<html>
<body style="width: 2000px; height: 1500px;">
	<h1>Large Page</h1>
</body>
</html>`
)
