package metric

func builtinAliases() map[string]string {
	return map[string]string{
		"swingBack":               "backswing",
		"clubTrajectoryBackswing": "backswing",
		"clubTrajectoryForswing":  "swingForward",
		"downswing":               "swingForward",
	}
}

//nolint:funlen,lll // static catalog
func builtinMetrics() []Metric {
	return []Metric{
		{
			Key: "stance", Title: "Stance", Category: CategorySetup, Weight: 0.07, Difficulty: 3,
			Description: "Width, balance and alignment of the feet and body at address.",
			Rubric: [4]string{
				"Shoulder-width base, weight centered over the balls of the feet, body square to the target line.",
				"Solid base with minor width or alignment drift.",
				"Noticeably narrow or wide, weight on heels or toes, alignment open or closed.",
				"Unbalanced setup that forces compensation during the swing.",
			},
		},
		{
			Key: "grip", Title: "Grip", Category: CategorySetup, Weight: 0.07, Difficulty: 3,
			Description: "Hand placement, pressure and orientation on the club.",
			Rubric: [4]string{
				"Neutral hands, light even pressure, V's pointing between chin and trail shoulder.",
				"Functional grip, slightly strong or weak.",
				"Clearly strong or weak grip, tension visible in the forearms.",
				"Hands fighting each other or regripping during the swing.",
			},
		},
		{
			Key: "ballPosition", Title: "Ball Position", Category: CategorySetup, Weight: 0.06, Difficulty: 2,
			Description: "Where the ball sits in the stance relative to the club being hit.",
			Rubric: [4]string{
				"Ball position matches the club: forward for driver, centered for short irons.",
				"Within a ball width of ideal.",
				"Out of place enough to change low point or face angle.",
				"Ball position causes fat, thin or topped contact.",
			},
		},
		{
			Key: "backswing", Title: "Backswing", Category: CategorySwing, Weight: 0.10, Difficulty: 6,
			Description: "Takeaway and turn to the top: width, plane and coil.",
			Rubric: [4]string{
				"One-piece takeaway, full shoulder turn, club on plane at the top.",
				"Good turn with small plane or width issues.",
				"Arms dominate the turn, club noticeably across or laid off.",
				"Little coil, sway or reverse pivot at the top.",
			},
		},
		{
			Key: "swingBack", Title: "Swing Back", Category: CategoryClub, Weight: 0.10, Difficulty: 6,
			Description: "Club path and face control on the way back.",
			Rubric: [4]string{
				"Clubhead tracks outside the hands, face stays square to the arc.",
				"Path mostly on line with minor face rotation.",
				"Club whips inside or lifts steeply early in the takeaway.",
				"Erratic path that requires a big reroute to recover.",
			},
		},
		{
			Key: "swingForward", Title: "Swing Forward", Category: CategoryClub, Weight: 0.15, Difficulty: 8,
			Description: "Downswing sequence and club path into the ball.",
			Rubric: [4]string{
				"Lower body leads, club drops into the slot and approaches from the inside.",
				"Sound sequence with a slight over-the-top tendency.",
				"Upper body starts the downswing, path clearly out to in.",
				"Casting and spinning out with no recognizable sequence.",
			},
		},
		{
			Key: "shallowing", Title: "Shallowing", Category: CategoryClub, Weight: 0.15, Difficulty: 9,
			Description: "How well the shaft flattens in transition before delivery.",
			Rubric: [4]string{
				"Shaft shallows in transition and matches the trail forearm plane.",
				"Shaft shallows late but arrives on plane.",
				"Shaft stays steep through transition.",
				"Shaft steepens in transition, forcing a chop at the ball.",
			},
		},
		{
			Key: "impactPosition", Title: "Impact Position", Category: CategorySwing, Weight: 0.15, Difficulty: 8,
			Description: "Body and club alignment at the moment of contact.",
			Rubric: [4]string{
				"Hands ahead of the ball, hips open, weight on the lead side, flat lead wrist.",
				"Good impact with minor flip or hang-back.",
				"Hands level with or behind the ball, weight stuck on the trail side.",
				"Flipping and early extension that make contact unpredictable.",
			},
		},
		{
			Key: "hipRotation", Title: "Hip Rotation", Category: CategoryBody, Weight: 0.08, Difficulty: 6,
			Description: "Hip turn going back and hip clearance through impact.",
			Rubric: [4]string{
				"Hips load into the trail side and clear aggressively through impact.",
				"Good rotation, slightly restricted or early.",
				"Hips slide instead of turning.",
				"Hips stall or thrust toward the ball.",
			},
		},
		{
			Key: "pacing", Title: "Pacing", Category: CategorySwing, Weight: 0.04, Difficulty: 4,
			Description: "Tempo and rhythm from takeaway to finish.",
			Rubric: [4]string{
				"Smooth roughly 3:1 backswing to downswing ratio, unhurried transition.",
				"Consistent tempo with a slightly quick transition.",
				"Rushed from the top or decelerating into the ball.",
				"No repeatable rhythm.",
			},
		},
		{
			Key: "stiffness", Title: "Stiffness", Category: CategoryBody, Weight: 0.04, Difficulty: 4,
			Description: "Tension in the arms, shoulders and legs during the motion.",
			Rubric: [4]string{
				"Relaxed athletic posture with no visible tension.",
				"Mostly free with some tension in the arms.",
				"Rigid arms or locked knees limit the turn.",
				"Tension dominates the motion.",
			},
		},
		{
			Key: "headPosition", Title: "Head Position", Category: CategoryBody, Weight: 0.04, Difficulty: 3,
			Description: "Stability of the head relative to the ball through the swing.",
			Rubric: [4]string{
				"Head stays quiet behind the ball until the release pulls it up.",
				"Small lateral or vertical movement.",
				"Noticeable dip, lift or sway.",
				"Head moves enough to change the low point.",
			},
		},
		{
			Key: "shoulderPosition", Title: "Shoulder Position", Category: CategoryBody, Weight: 0.04, Difficulty: 5,
			Description: "Shoulder tilt and turn at address, top and impact.",
			Rubric: [4]string{
				"Proper tilt at address, full turn, shoulders square to slightly open at impact.",
				"Good turn with minor tilt issues.",
				"Flat or level shoulder turn, open early.",
				"Shoulders spin out and drive the path across the ball.",
			},
		},
		{
			Key: "armPosition", Title: "Arm Position", Category: CategoryBody, Weight: 0.04, Difficulty: 5,
			Description: "Lead arm structure and trail arm fold.",
			Rubric: [4]string{
				"Straight but relaxed lead arm, trail elbow folds under the club.",
				"Solid structure with slight bend or flying elbow.",
				"Lead arm collapses or trail elbow flies noticeably.",
				"Arm structure breaks down and loses width.",
			},
		},
		{
			Key: "followThrough", Title: "Follow Through", Category: CategoryBody, Weight: 0.04, Difficulty: 4,
			Description: "Extension after impact and the balance of the finish.",
			Rubric: [4]string{
				"Full extension, chest to target, balanced finish held on the lead side.",
				"Good finish with minor balance loss.",
				"Abbreviated finish or falling back.",
				"No finish, off balance.",
			},
		},
		{
			Key: "confidence", Title: "Confidence", Category: CategoryMental, Weight: 0.05, Difficulty: 5,
			Description: "Commitment to the swing as read from the pre-shot routine and motion.",
			Rubric: [4]string{
				"Decisive routine and a fully committed swing.",
				"Committed with a brief hesitation.",
				"Tentative motion or decelerating swing.",
				"Visible doubt and steering through the ball.",
			},
		},
		{
			Key: "focus", Title: "Focus", Category: CategoryMental, Weight: 0.05, Difficulty: 5,
			Description: "Consistency of routine and attention over the shot.",
			Rubric: [4]string{
				"Consistent routine, eyes and posture settled before the takeaway.",
				"Mostly settled with small distractions.",
				"Rushed or inconsistent routine.",
				"No discernible routine.",
			},
		},
		{
			Key: "swingSpeed", Title: "Swing Speed", Category: CategorySwing, Weight: 0.05, Difficulty: 7,
			Description: "Clubhead speed generated through the hitting zone relative to control.",
			Rubric: [4]string{
				"Speed peaks at the ball with full control.",
				"Good speed with occasional loss of control.",
				"Speed leaks before impact.",
				"Little speed or all-arms effort.",
			},
		},
	}
}
