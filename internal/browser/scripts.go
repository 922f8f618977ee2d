package browser

// BindingName is the page function the injected button calls with
// location.hash.
const BindingName = "__jellypotActivate"

const snapshotJS = `() => document.documentElement.outerHTML`

// insertButtonJS re-checks presence because the host may have re-rendered
// between the snapshot and this call.
const insertButtonJS = `(markup, anchorSelector, buttonSelector, binding) => {
	if (document.querySelector(buttonSelector)) return false;
	const anchor = document.querySelector(anchorSelector);
	if (!anchor) return false;
	anchor.insertAdjacentHTML('beforebegin', markup);
	const button = document.querySelector(buttonSelector);
	if (!button) return false;
	button.addEventListener('click', (event) => {
		event.preventDefault();
		event.stopPropagation();
		if (typeof window[binding] === 'function') {
			window[binding](window.location.hash);
		}
	});
	return true;
}`

const setStateJS = `(buttonSelector, attr, state, message) => {
	const button = document.querySelector(buttonSelector);
	if (!button) return false;
	button.setAttribute(attr, state);
	button.title = message;
	button.style.opacity = state === 'busy' ? '0.6' : '';
	button.style.outline = state === 'error' ? '2px solid #c62828' : '';
	return true;
}`

const appendFrameJS = `(id, src) => {
	const frame = document.createElement('iframe');
	frame.id = id;
	frame.style.display = 'none';
	frame.src = src;
	document.body.appendChild(frame);
	return id;
}`

const removeFrameJS = `(id) => {
	const frame = document.getElementById(id);
	if (frame && frame.parentNode) {
		frame.parentNode.removeChild(frame);
		return true;
	}
	return false;
}`

const currentUserJS = `() => {
	if (!window.ApiClient) throw new Error('ApiClient is not available on this page');
	const info = ApiClient._serverInfo || {};
	const userId = info.UserId || (ApiClient.getCurrentUserId ? ApiClient.getCurrentUserId() : '');
	return JSON.stringify({UserId: userId || ''});
}`

const getItemJS = `async (userId, itemId) => JSON.stringify(await ApiClient.getItem(userId, itemId))`

const nextUpJS = `async (seriesId, userId) => JSON.stringify(await ApiClient.getNextUpEpisodes({SeriesId: seriesId, UserId: userId}))`

const childrenJS = `async (userId, parentId) => JSON.stringify(await ApiClient.getItems(userId, {parentId: parentId}))`
