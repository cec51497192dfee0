package mock

// recommendationPool holds coaching lines per metric; the analyzer draws one
// for each of the three weakest metrics.
var recommendationPool = map[string][]string{ //nolint:gochecknoglobals // static copy
	"stance": {
		"Widen your stance to about shoulder width to build a more stable base.",
		"Set your weight over the balls of your feet so you can turn without swaying.",
	},
	"grip": {
		"Check that the V's of both hands point between your chin and trail shoulder.",
		"Lighten your grip pressure so the club can release freely through impact.",
	},
	"ballPosition": {
		"Move the ball slightly forward for longer clubs to match your low point.",
		"Use an alignment stick to check ball position before each practice shot.",
	},
	"backswing": {
		"Start the takeaway with your chest and shoulders instead of your hands.",
		"Make a fuller shoulder turn so your back faces the target at the top.",
	},
	"swingBack": {
		"Keep the clubhead outside your hands until hip height on the way back.",
		"Keep the clubface square to your arc in the first part of the takeaway.",
	},
	"swingForward": {
		"Start the downswing by shifting pressure to your lead foot before the shoulders unwind.",
		"Let your arms drop in transition rather than throwing the club from the top.",
	},
	"shallowing": {
		"Feel the clubhead fall behind your hands in transition to shallow the shaft.",
		"Pause briefly at the top to stop the shaft steepening as you start down.",
	},
	"impactPosition": {
		"Get your hands ahead of the ball at impact with a flat lead wrist.",
		"Finish your weight shift so most of your pressure is on the lead foot at contact.",
	},
	"hipRotation": {
		"Turn your hips instead of sliding them toward the target.",
		"Let your trail hip turn back in the backswing to load into the ground.",
	},
	"pacing": {
		"Count a smooth one-two going back and three at impact to steady your tempo.",
		"Slow the transition down; speed should peak at the ball, not at the top.",
	},
	"stiffness": {
		"Relax your arms and shoulders at address to let the body turn freely.",
		"Keep a soft flex in your knees throughout the swing.",
	},
	"headPosition": {
		"Keep your head quiet and behind the ball until the follow-through pulls it up.",
		"Film face-on and watch for head dips through impact.",
	},
	"shoulderPosition": {
		"Keep your trail shoulder slightly lower than the lead at address.",
		"Turn your shoulders on a steeper tilt rather than level around your body.",
	},
	"armPosition": {
		"Keep your lead arm extended without locking it at the top.",
		"Let your trail elbow fold and stay close to your side in the backswing.",
	},
	"followThrough": {
		"Hold your finish with your chest facing the target and weight on the lead foot.",
		"Extend both arms toward the target after impact before folding into the finish.",
	},
	"confidence": {
		"Commit to one target and one shot shape before you step into the ball.",
		"Swing through to a full finish instead of steering the ball.",
	},
	"focus": {
		"Build a short, repeatable pre-shot routine and use it on every shot.",
		"Pick one swing thought per session rather than several at once.",
	},
	"swingSpeed": {
		"Add speed gradually with step-through swings while keeping your balance.",
		"Let the club release through the ball; do not hold the face off.",
	},
}

var genericPool = []string{ //nolint:gochecknoglobals // static copy
	"Record slow-motion video from two angles to see the motion more clearly.",
	"Work with a coach on one fundamental at a time.",
	"Spend part of each practice on half swings focused on solid contact.",
}
