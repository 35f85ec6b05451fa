package render

import "github.com/recera/knowledgemap/pkg/styling"

// Stylesheet styles the scene. Idle drift runs as a CSS animation offset by
// --idle-delay; the wasm viewer drives --idle-x and --idle-y per frame
// instead and marks the root with knowledge-map--scripted.
var Stylesheet = styling.StyleWithRegistry("knowledge-map", `
.knowledge-map {
	position: fixed;
	inset: 0;
	overflow: hidden;
	background: radial-gradient(circle at 50% 40%, #1d1b14 0%, #0b0b0d 70%);
	color: #f3ecd6;
	font-family: "Inter", system-ui, sans-serif;
	user-select: none;
}

.knowledge-map__chrome {
	position: absolute;
	top: 1rem;
	left: 1rem;
	right: 1rem;
	z-index: 3;
	display: flex;
	align-items: center;
	gap: 1.5rem;
	pointer-events: none;
}

.knowledge-map__home {
	pointer-events: auto;
	color: #ffd700;
	text-decoration: none;
}

.knowledge-map__hint {
	font-size: 0.8rem;
	opacity: 0.7;
}

.knowledge-map__viewport {
	position: absolute;
	inset: 0;
	touch-action: none;
}

.knowledge-map__canvas {
	position: absolute;
	left: 0;
	top: 0;
	width: 0;
	height: 0;
	transform-origin: 0 0;
	will-change: transform;
}

.knowledge-map__links {
	position: absolute;
	overflow: visible;
	pointer-events: none;
}

.knowledge-link {
	fill: none;
	stroke: url(#link-gradient);
	stroke-width: 2;
	transition: stroke-width 120ms ease;
}

.knowledge-link--stretched {
	stroke: rgb(255, calc(215 - 120 * var(--stretch, 0)), 0);
	stroke-width: calc(2px + 3px * var(--stretch, 0));
}

.knowledge-map__nodes {
	position: absolute;
	left: 0;
	top: 0;
}

.knowledge-node {
	--idle-x: 0px;
	--idle-y: 0px;
	position: absolute;
	width: 180px;
	height: 180px;
	margin: -90px 0 0 -90px;
	border: 1px solid rgba(255, 215, 0, 0.45);
	border-radius: 50%;
	background: rgba(20, 18, 12, 0.85);
	color: inherit;
	cursor: pointer;
	translate: var(--idle-x) var(--idle-y);
	animation: knowledge-drift 10.5s ease-in-out infinite;
	animation-delay: calc(var(--idle-delay, 0s) * -10);
}

.knowledge-map--scripted .knowledge-node,
.knowledge-map--still .knowledge-node {
	animation: none;
}

.knowledge-node--active {
	border-color: #ffd700;
	box-shadow: 0 0 32px rgba(255, 215, 0, 0.35);
}

.knowledge-node--dragging {
	animation: none;
	translate: none;
	cursor: grabbing;
	z-index: 2;
}

.knowledge-map--dragging .knowledge-node {
	transition: none;
}

.knowledge-node__inner {
	display: flex;
	width: 100%;
	height: 100%;
	align-items: center;
	justify-content: center;
	padding: 1rem;
	box-sizing: border-box;
}

.knowledge-node__title {
	font-size: 1rem;
	font-weight: 600;
	text-align: center;
}

@keyframes knowledge-drift {
	0% { translate: 0px 4px; }
	25% { translate: 6px 0px; }
	50% { translate: 0px -4px; }
	75% { translate: -6px 0px; }
	100% { translate: 0px 4px; }
}

.knowledge-modal__overlay {
	position: fixed;
	inset: 0;
	z-index: 10;
	display: flex;
	align-items: center;
	justify-content: center;
	background: rgba(0, 0, 0, 0.6);
}

.knowledge-modal {
	position: relative;
	max-width: 560px;
	max-height: 80vh;
	overflow-y: auto;
	padding: 2rem;
	border-radius: 16px;
	background: #15130d;
	border: 1px solid rgba(255, 215, 0, 0.3);
}

.knowledge-modal__close {
	position: absolute;
	top: 0.75rem;
	right: 0.75rem;
	border: none;
	background: none;
	color: inherit;
	font-size: 1.5rem;
	cursor: pointer;
}

.knowledge-modal__kicker {
	font-size: 0.75rem;
	letter-spacing: 0.1em;
	text-transform: uppercase;
	color: #ffd700;
}

.knowledge-modal__section h4 {
	margin: 1.5rem 0 0.5rem;
}

.knowledge-modal__links {
	display: flex;
	flex-wrap: wrap;
	gap: 0.75rem;
}

.knowledge-modal__links a {
	color: #ffd700;
}

@media (max-width: 720px) {
	.knowledge-map__hint {
		display: none;
	}
}
`)
